package core

// Config represents the complete unibot configuration structure
type Config struct {
	WebhookServer WebhookServerConfig `yaml:"webhook_server"`
	Platforms     PlatformsConfig     `yaml:"platforms"`
	Bots          []BotConfig         `yaml:"bots"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// WebhookServerConfig represents the inbound update receiver
type WebhookServerConfig struct {
	Port       int    `yaml:"port"`
	PathPrefix string `yaml:"path_prefix"` // Updates arrive at {path_prefix}/{platform}/{bot_id}
	PublicURL  string `yaml:"public_url"`  // Externally reachable base URL used for webhook registration
}

// PlatformsConfig holds per-platform client settings
type PlatformsConfig struct {
	Telegram TelegramPlatformConfig `yaml:"telegram"`
	Max      MaxPlatformConfig      `yaml:"max"`
	Discord  DiscordPlatformConfig  `yaml:"discord"`
}

// TelegramPlatformConfig represents Telegram Bot API client settings
type TelegramPlatformConfig struct {
	APIEndpoint string `yaml:"api_endpoint"` // Format string like https://api.telegram.org/bot%s/%s (default: public API)
	Timeout     string `yaml:"timeout"`
}

// MaxPlatformConfig represents MAX Bot API client settings
type MaxPlatformConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// DiscordPlatformConfig represents Discord REST client settings
type DiscordPlatformConfig struct {
	Timeout string `yaml:"timeout"`
}

// BotConfig represents one bot on one platform
type BotConfig struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Platform       string            `yaml:"platform"`
	Token          string            `yaml:"token"`
	ChannelID      string            `yaml:"channel_id"` // Default chat for publish and cross-platform sends
	Enabled        bool              `yaml:"enabled"`
	AdditionalData map[string]string `yaml:"additional_data"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs (default: true)
	EnableStdout bool   `yaml:"enable_stdout"` // Also output to stdout (default: true)
}

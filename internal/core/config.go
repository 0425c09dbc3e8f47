// Package core provides configuration management and the composition root for unibot.
//
// The core package wires the messenger layer into a running process. It handles:
//
//   - Configuration loading and validation (from YAML files)
//   - Building the adapter registry, manager and messenger service
//   - Initializing configured bots
//   - HTTP webhook server for receiving platform updates
//   - Graceful shutdown and cleanup
//
// # Configuration
//
// Configuration is loaded from a YAML file with the following main sections:
//
//   - webhook_server: HTTP receiver settings
//   - platforms: per-platform client settings
//   - bots: bot identities, one entry per bot and platform
//   - logging: Log configuration
//
// # Example Configuration
//
//	webhook_server:
//	  port: 8080
//	  path_prefix: /webhook
//	  public_url: https://bots.example.com
//	platforms:
//	  max:
//	    base_url: https://botapi.max.ru
//	bots:
//	  - id: news
//	    platform: telegram
//	    token: "${TG_TOKEN}"
//	    channel_id: "@news_channel"
//	    enabled: true
package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/keepmind9/unibot/internal/validator"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWebhookPort       = 8080
	DefaultWebhookPathPrefix = "/webhook"
	DefaultPlatformTimeout   = "10s"
	DefaultLogLevel          = "info"
	DefaultLogMaxSize        = 100 // MB
	DefaultLogMaxBackups     = 5
	DefaultLogMaxAge         = 30 // days
)

// LoadConfig loads configuration from file and expands environment variables
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig expands environment variables in data, parses it, fills defaults and validates
func ParseConfig(data []byte) (*Config, error) {
	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// applyDefaults fills every unset field that has a default
func applyDefaults(config *Config) {
	if config.WebhookServer.Port == 0 {
		config.WebhookServer.Port = DefaultWebhookPort
	}
	if config.WebhookServer.PathPrefix == "" {
		config.WebhookServer.PathPrefix = DefaultWebhookPathPrefix
	}
	// "/" serves updates from the root
	if prefix := strings.Trim(config.WebhookServer.PathPrefix, "/"); prefix != "" {
		config.WebhookServer.PathPrefix = "/" + prefix
	} else {
		config.WebhookServer.PathPrefix = ""
	}
	config.WebhookServer.PublicURL = strings.TrimRight(config.WebhookServer.PublicURL, "/")

	for _, timeout := range []*string{
		&config.Platforms.Telegram.Timeout,
		&config.Platforms.Max.Timeout,
		&config.Platforms.Discord.Timeout,
	} {
		if *timeout == "" {
			*timeout = DefaultPlatformTimeout
		}
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = DefaultLogMaxAge
	}
	// Without a file, stdout is the only sink
	if config.Logging.File == "" {
		config.Logging.EnableStdout = true
	}
}

// validateConfig fills defaults and checks the configuration
func validateConfig(config *Config) error {
	applyDefaults(config)

	if config.WebhookServer.Port < 1 || config.WebhookServer.Port > 65535 {
		return fmt.Errorf("webhook_server.port must be between 1 and 65535 (got %d)", config.WebhookServer.Port)
	}

	for name, timeout := range map[string]string{
		"telegram": config.Platforms.Telegram.Timeout,
		"max":      config.Platforms.Max.Timeout,
		"discord":  config.Platforms.Discord.Timeout,
	} {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout for platform %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout for platform %s must be positive (got %v)", name, d)
		}
	}

	if len(config.Bots) == 0 {
		return fmt.Errorf("at least one bot must be configured")
	}

	var errs []error
	seen := make(map[string]bool)
	for i, bot := range config.Bots {
		if bot.ID == "" {
			errs = append(errs, fmt.Errorf("bots[%d]: id is required", i))
			continue
		}
		key := messenger.AdapterKey(bot.ID, messenger.Platform(bot.Platform))
		if seen[key] {
			errs = append(errs, fmt.Errorf("bots[%d]: duplicate bot %s on platform %s", i, bot.ID, bot.Platform))
		}
		seen[key] = true

		if !bot.Enabled {
			continue
		}
		if err := validator.ValidateCredentials(bot.Platform, bot.Token, bot.ChannelID); err != nil {
			errs = append(errs, fmt.Errorf("bot %s: %w", bot.ID, err))
		}
	}

	return errors.Join(errs...)
}

// GetBotConfig retrieves configuration for a bot by id and platform. An empty
// platform matches the first bot with that id.
func (c *Config) GetBotConfig(id, platform string) (BotConfig, error) {
	for _, bot := range c.Bots {
		if bot.ID != id || (platform != "" && bot.Platform != platform) {
			continue
		}
		if !bot.Enabled {
			return BotConfig{}, fmt.Errorf("bot %s is disabled", id)
		}
		return bot, nil
	}
	if platform != "" {
		return BotConfig{}, fmt.Errorf("bot %s on platform %s not found in configuration", id, platform)
	}
	return BotConfig{}, fmt.Errorf("bot %s not found in configuration", id)
}

// EnabledBots returns every enabled bot in configuration order
func (c *Config) EnabledBots() []BotConfig {
	var out []BotConfig
	for _, bot := range c.Bots {
		if bot.Enabled {
			out = append(out, bot)
		}
	}
	return out
}

// WebhookPath is the receiver path for a bot's updates
func (c *Config) WebhookPath(bot BotConfig) string {
	return c.WebhookServer.PathPrefix + "/" + bot.Platform + "/" + bot.ID
}

// WebhookURL is the public webhook URL for a bot, empty without public_url
func (c *Config) WebhookURL(bot BotConfig) string {
	if c.WebhookServer.PublicURL == "" {
		return ""
	}
	return c.WebhookServer.PublicURL + c.WebhookPath(bot)
}

// RegistryOptions converts platform settings for the adapter registry
func (c *Config) RegistryOptions() messenger.RegistryOptions {
	return messenger.RegistryOptions{
		TelegramEndpoint: c.Platforms.Telegram.APIEndpoint,
		TelegramTimeout:  parseTimeout(c.Platforms.Telegram.Timeout),
		MaxBaseURL:       c.Platforms.Max.BaseURL,
		MaxTimeout:       parseTimeout(c.Platforms.Max.Timeout),
	}
}

// DiscordTimeout is the Discord REST request timeout
func (c *Config) DiscordTimeout() time.Duration {
	return parseTimeout(c.Platforms.Discord.Timeout)
}

// LoggerConfig converts the logging section for the logger package
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:        c.Logging.Level,
		File:         c.Logging.File,
		MaxSize:      c.Logging.MaxSize,
		MaxBackups:   c.Logging.MaxBackups,
		MaxAge:       c.Logging.MaxAge,
		Compress:     c.Logging.Compress,
		EnableStdout: c.Logging.EnableStdout,
	}
}

// ToBot converts a bot entry for the messenger service
func (b BotConfig) ToBot() service.Bot {
	return service.Bot{
		ID:             b.ID,
		Name:           b.Name,
		Platform:       messenger.Platform(b.Platform),
		Token:          b.Token,
		ChannelID:      b.ChannelID,
		AdditionalData: b.AdditionalData,
	}
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultPlatformTimeout)
	}
	return d
}

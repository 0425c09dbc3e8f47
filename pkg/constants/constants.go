package constants

import "time"

// Message length limits for different platforms
const (
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxTelegramCaptionLength is Telegram's media caption limit
	MaxTelegramCaptionLength = 1024
	// MaxMaxMessageLength is MAX's message character limit
	MaxMaxMessageLength = 4000
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
)

// Keyboard limits for different platforms
const (
	MaxTelegramButtonsPerRow = 8
	MaxTelegramButtonRows    = 100
	MaxMaxButtonsPerRow      = 7
	MaxMaxButtonRows         = 30
	// Discord allows 5 action rows of 5 buttons each
	MaxDiscordButtonsPerRow = 5
	MaxDiscordButtonRows    = 5
)

// Request budgets for different platforms
const (
	TelegramRateLimitPerSecond = 30
	TelegramRateLimitPerMinute = 1800
	MaxRateLimitPerSecond      = 30
	MaxRateLimitPerMinute      = 1800
	DiscordRateLimitPerSecond  = 5
	DiscordRateLimitPerMinute  = 300
)

// Platform endpoints
const (
	// DefaultMaxBaseURL is the MAX Bot API base URL
	DefaultMaxBaseURL = "https://botapi.max.ru"
)

// Timeouts and delays
const (
	// DefaultRequestTimeout is the timeout for a single platform API call
	DefaultRequestTimeout = 10 * time.Second
	// WebhookReadTimeout is the read timeout for the webhook receiver
	WebhookReadTimeout = 10 * time.Second
	// ShutdownTimeout bounds graceful shutdown of the webhook receiver
	ShutdownTimeout = 5 * time.Second
)

// Webhook receiver limits
const (
	// MaxWebhookBodySize is the largest update payload accepted (1MB)
	MaxWebhookBodySize = 1 << 20
	// HTTPSuccessStatusCode is the standard HTTP success status code
	HTTPSuccessStatusCode = 200
)

// Secret masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply partial masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 4
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

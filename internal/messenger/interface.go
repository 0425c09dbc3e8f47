// Package messenger provides bot adapters for chat platforms behind one
// unified message, chat, user and update model.
//
// Each adapter translates the unified model into its platform's wire API and
// back. Adapters are created through a Registry and usually owned by a
// Manager, which keys live adapters by bot identity and offers fan-out across
// several bots.
//
// # Supported Platforms
//
//   - Telegram: Bot HTTP API through go-telegram-bot-api
//   - MAX: Bot API through the internal/maxapi client
//   - Discord: REST API through discordgo (registered by the composition root)
//
// # Usage
//
//	registry := messenger.NewDefaultRegistry(messenger.RegistryOptions{})
//	adapter, err := registry.CreateAndInitialize(ctx, messenger.Credentials{
//	    Platform: messenger.PlatformTelegram,
//	    Token:    token,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Dispose()
//	result, err := adapter.SendMessage(ctx, "@channel", messenger.Message{Text: "hello"})
//
// # Failure model
//
// SendMessage reports ordinary failures inside SendResult and returns an error
// only for rate limiting (*RateLimitError) and lifecycle misuse
// (ErrNotInitialized). Batch operations always return one result per input.
//
// # Thread Safety
//
// Adapters and the Manager guard their state with mutexes and may be shared
// between goroutines.
package messenger

import "context"

// Adapter is the capability contract every platform implementation satisfies
type Adapter interface {
	// Platform returns the platform this adapter talks to
	Platform() Platform

	// Initialize validates the token format, performs one readiness call and
	// moves the adapter to the ready state
	Initialize(ctx context.Context, creds Credentials) error

	// BotInfo returns the bot identity, fetched at most once per lifetime
	BotInfo(ctx context.Context) (*BotInfo, error)

	// SendMessage sends one message. Ordinary failures are reported in the
	// result; rate limiting is returned as *RateLimitError.
	SendMessage(ctx context.Context, chatID string, msg Message) (SendResult, error)

	// SendMessageToMultiple sends to each recipient in order, pacing requests
	// to the platform's per-second budget
	SendMessageToMultiple(ctx context.Context, chatIDs []string, msg Message) ([]SendResult, error)

	GetChat(ctx context.Context, chatID string) (*Chat, error)
	GetUser(ctx context.Context, userID string) (*User, error)

	SetWebhook(ctx context.Context, opts WebhookOptions) error
	DeleteWebhook(ctx context.Context) error
	GetWebhookInfo(ctx context.Context) (*WebhookInfo, error)

	// ProcessWebhookUpdate normalizes one inbound payload. It never fails.
	ProcessWebhookUpdate(raw []byte) Update

	ValidateToken(token string) bool
	ValidateChatID(chatID string) bool
	FormatText(text string, format TextFormat) string
	Limits() Limits

	// CheckBotPermissions never fails; lookups that go wrong yield no permissions
	CheckBotPermissions(ctx context.Context, chatID string) Permissions

	// Dispose drops credentials and cached state
	Dispose()
}

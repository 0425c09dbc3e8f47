// Package validator holds the syntactic credential rules for every supported
// messenger platform.
//
// The rules here are pure: no network access, no adapter state. Adapters in
// internal/messenger delegate their ValidateToken/ValidateChatID methods to this
// package, so a token accepted by a form in front of the adapter layer is
// exactly the token accepted by the adapter itself.
package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Platform identifiers understood by the validators
const (
	PlatformTelegram = "telegram"
	PlatformMax      = "max"
	PlatformDiscord  = "discord"
)

const minMaxTokenLength = 20

var (
	telegramTokenPattern    = regexp.MustCompile(`^\d{8,10}:[A-Za-z0-9_-]{35}$`)
	telegramUsernamePattern = regexp.MustCompile(`^@\w{5,32}$`)
	signedIntegerPattern    = regexp.MustCompile(`^-?\d+$`)
	maxTokenPattern         = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	positiveIntegerPattern  = regexp.MustCompile(`^\d+$`)
	discordTokenPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{23,28}\.[A-Za-z0-9_-]{6,7}\.[A-Za-z0-9_-]{27,}$`)
	discordSnowflakePattern = regexp.MustCompile(`^\d{17,20}$`)
)

var (
	errInvalidToken  = errors.New("token format is invalid for this platform")
	errInvalidChatID = errors.New("chat id format is invalid for this platform")
)

// Platforms returns the platforms that have validation rules
func Platforms() []string {
	return []string{PlatformTelegram, PlatformMax, PlatformDiscord}
}

// TelegramToken reports whether token looks like "<bot id>:<35 char secret>"
func TelegramToken(token string) bool {
	return telegramTokenPattern.MatchString(token)
}

// TelegramChatID accepts @username (5-32 word chars) or a signed non-zero integer
func TelegramChatID(chatID string) bool {
	if strings.HasPrefix(chatID, "@") {
		return telegramUsernamePattern.MatchString(chatID)
	}
	if !signedIntegerPattern.MatchString(chatID) {
		return false
	}
	n, err := strconv.ParseInt(chatID, 10, 64)
	return err == nil && n != 0
}

// MaxToken requires at least 20 characters from [A-Za-z0-9._-]
func MaxToken(token string) bool {
	return len(token) >= minMaxTokenLength && maxTokenPattern.MatchString(token)
}

// MaxChatID accepts only a positive integer
func MaxChatID(chatID string) bool {
	if !positiveIntegerPattern.MatchString(chatID) {
		return false
	}
	n, err := strconv.ParseInt(chatID, 10, 64)
	return err == nil && n > 0
}

// DiscordToken checks the three dot-separated base64url segments of a bot token
func DiscordToken(token string) bool {
	return discordTokenPattern.MatchString(token)
}

// DiscordChatID accepts a channel snowflake
func DiscordChatID(chatID string) bool {
	return discordSnowflakePattern.MatchString(chatID)
}

// ValidateToken dispatches to the platform rule. Unknown platforms never validate.
func ValidateToken(platform, token string) bool {
	switch platform {
	case PlatformTelegram:
		return TelegramToken(token)
	case PlatformMax:
		return MaxToken(token)
	case PlatformDiscord:
		return DiscordToken(token)
	}
	return false
}

// ValidateChatID dispatches to the platform rule. Unknown platforms never validate.
func ValidateChatID(platform, chatID string) bool {
	switch platform {
	case PlatformTelegram:
		return TelegramChatID(chatID)
	case PlatformMax:
		return MaxChatID(chatID)
	case PlatformDiscord:
		return DiscordChatID(chatID)
	}
	return false
}

// ValidateCredentials checks a bot definition field by field. The chat id is
// optional; when set it must match the platform rule. The returned error is a
// validation.Errors keyed by field name.
func ValidateCredentials(platform, token, chatID string) error {
	known := make([]interface{}, 0, len(Platforms()))
	for _, p := range Platforms() {
		known = append(known, p)
	}

	return validation.Errors{
		"platform": validation.Validate(platform, validation.Required, validation.In(known...)),
		"token": validation.Validate(token, validation.Required, validation.By(func(value interface{}) error {
			if !ValidateToken(platform, value.(string)) {
				return errInvalidToken
			}
			return nil
		})),
		"channel_id": validation.Validate(chatID, validation.By(func(value interface{}) error {
			s := value.(string)
			if s != "" && !ValidateChatID(platform, s) {
				return errInvalidChatID
			}
			return nil
		})),
	}.Filter()
}

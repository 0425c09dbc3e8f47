package messenger

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// lifecycle is the ready/uninitialized state shared by all adapters.
// Adapters embed it and guard their own client fields with mu as well.
type lifecycle struct {
	mu       sync.RWMutex
	platform Platform
	ready    bool
	creds    Credentials
	botInfo  *BotInfo
}

// ensureReady fails fast before any I/O when the adapter is not ready
func (l *lifecycle) ensureReady() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.ready {
		return ErrNotInitialized
	}
	return nil
}

// cachedBotInfo returns a copy of the cached identity
func (l *lifecycle) cachedBotInfo() (*BotInfo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.botInfo == nil {
		return nil, false
	}
	info := *l.botInfo
	return &info, true
}

func (l *lifecycle) storeBotInfo(info *BotInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		cp := *info
		l.botInfo = &cp
	}
}

// botID returns the cached bot id, empty when unknown
func (l *lifecycle) botID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.botInfo == nil {
		return ""
	}
	return l.botInfo.ID
}

// resetLocked clears credentials and cache; caller holds mu
func (l *lifecycle) resetLocked() {
	l.ready = false
	l.creds = Credentials{}
	l.botInfo = nil
}

// paceInterval is the delay between consecutive sends that keeps a batch
// under the platform's per-second budget
func paceInterval(limits Limits) time.Duration {
	if limits.RateLimitPerSecond <= 0 {
		return 0
	}
	return time.Second / time.Duration(limits.RateLimitPerSecond)
}

type sendFunc func(ctx context.Context, chatID string, msg Message) (SendResult, error)

// sendSequential sends msg to every chat id in order. Each recipient gets
// exactly one result; a failure, including a rate limit, never stops the loop.
func sendSequential(ctx context.Context, platform Platform, limits Limits, chatIDs []string, msg Message, send sendFunc) []SendResult {
	limiter := rate.NewLimiter(rate.Every(paceInterval(limits)), 1)
	results := make([]SendResult, len(chatIDs))

	for i, chatID := range chatIDs {
		if err := limiter.Wait(ctx); err != nil {
			results[i] = sendFailed(err)
			continue
		}

		res, err := send(ctx, chatID, msg)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"platform": platform,
				"chat_id":  chatID,
				"error":    err,
			}).Warn("multi-send-recipient-failed")
			res = sendFailed(err)
		}
		results[i] = res
	}

	return results
}

// truncateText cuts text to max runes
func truncateText(platform Platform, text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	logger.WithFields(logrus.Fields{
		"platform":        platform,
		"original_length": utf8.RuneCountInString(text),
		"max_length":      max,
	}).Info("truncating-message-for-platform-limit")

	runes := []rune(text)
	return string(runes[:max])
}

// clampKeyboard drops rows and buttons beyond the platform limits
func clampKeyboard(platform Platform, kb *Keyboard, limits Limits) [][]Button {
	if kb == nil {
		return nil
	}

	rows := kb.Buttons
	if limits.MaxButtonRows > 0 && len(rows) > limits.MaxButtonRows {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"rows":     len(rows),
			"max_rows": limits.MaxButtonRows,
		}).Warn("dropping-keyboard-rows-over-platform-limit")
		rows = rows[:limits.MaxButtonRows]
	}

	out := make([][]Button, 0, len(rows))
	for _, row := range rows {
		if limits.MaxButtonsPerRow > 0 && len(row) > limits.MaxButtonsPerRow {
			row = row[:limits.MaxButtonsPerRow]
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}

// maskSecret masks sensitive information for logging
func maskSecret(s string) string {
	if len(s) <= constants.MinSecretLengthForMasking {
		return "***"
	}
	return s[:constants.SecretMaskPrefixLength] + "***" + s[len(s)-constants.SecretMaskSuffixLength:]
}

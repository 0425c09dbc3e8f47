// Package service is the application-facing façade over the messenger layer.
//
// It keeps a local cache of initialized bots next to the shared Manager,
// builds outgoing posts and fans messages out across bots and platforms.
// Every batch operation returns one entry per input and never aborts on a
// single failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/sirupsen/logrus"
)

var (
	// ErrBotNotInitialized is returned when a bot is used before InitializeBot
	ErrBotNotInitialized = errors.New("bot not initialized")

	// ErrNoChannel is recorded when a cross-platform send targets a bot without a channel
	ErrNoChannel = errors.New("bot has no channel configured")
)

// Bot is one configured bot identity on one platform
type Bot struct {
	ID             string             `json:"id"`
	Name           string             `json:"name,omitempty"`
	Platform       messenger.Platform `json:"platform"`
	Token          string             `json:"-"`
	ChannelID      string             `json:"channel_id,omitempty"`
	AdditionalData map[string]string  `json:"-"`
}

// Key is the manager key of the bot's adapter
func (b Bot) Key() string {
	return messenger.AdapterKey(b.ID, b.Platform)
}

func (b Bot) credentials() messenger.Credentials {
	return messenger.Credentials{
		Token:          b.Token,
		Platform:       b.Platform,
		AdditionalData: b.AdditionalData,
	}
}

// ConnectionResult is the outcome of a connection test
type ConnectionResult struct {
	Success     bool                   `json:"success"`
	BotInfo     *messenger.BotInfo     `json:"bot_info,omitempty"`
	Permissions *messenger.Permissions `json:"permissions,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Delivery is the per-bot result of a fan-out
type Delivery struct {
	BotID    string             `json:"bot_id"`
	BotName  string             `json:"bot_name,omitempty"`
	Platform messenger.Platform `json:"platform"`
	ChatID   string             `json:"chat_id,omitempty"`
	messenger.SendResult
}

// BotStatus is the per-bot entry of BotsStatus
type BotStatus struct {
	BotID    string             `json:"bot_id"`
	Platform messenger.Platform `json:"platform"`
	Info     *messenger.BotInfo `json:"info,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type cachedBot struct {
	bot     Bot
	adapter messenger.Adapter
}

// Service composes a Manager with bot-level conveniences
type Service struct {
	manager *messenger.Manager

	mu    sync.RWMutex
	cache map[string]cachedBot
}

// New creates a service over manager
func New(manager *messenger.Manager) *Service {
	return &Service{
		manager: manager,
		cache:   make(map[string]cachedBot),
	}
}

// Manager returns the underlying adapter manager
func (s *Service) Manager() *messenger.Manager {
	return s.manager
}

// TestBotConnection initializes a throwaway adapter, reads the bot identity and,
// when the bot has a channel, its permissions there. The adapter is always
// disposed and never registered.
func (s *Service) TestBotConnection(ctx context.Context, bot Bot) ConnectionResult {
	log := logger.WithFields(logrus.Fields{
		"bot_id":   bot.ID,
		"platform": bot.Platform,
	})

	adapter, err := s.manager.Registry().CreateAndInitialize(ctx, bot.credentials())
	if err != nil {
		log.WithField("error", err).Warn("bot-connection-test-failed")
		return ConnectionResult{Error: err.Error()}
	}
	defer adapter.Dispose()

	info, err := adapter.BotInfo(ctx)
	if err != nil {
		log.WithField("error", err).Warn("bot-connection-test-failed")
		return ConnectionResult{Error: err.Error()}
	}

	result := ConnectionResult{Success: true, BotInfo: info}
	if bot.ChannelID != "" {
		perms := adapter.CheckBotPermissions(ctx, bot.ChannelID)
		result.Permissions = &perms
	}

	log.WithField("username", info.Username).Info("bot-connection-test-succeeded")
	return result
}

// InitializeBot registers the bot's adapter in the manager and the local cache.
// Re-initializing a bot disposes the adapter it replaces.
func (s *Service) InitializeBot(ctx context.Context, bot Bot) (messenger.Adapter, error) {
	key := bot.Key()
	adapter, err := s.manager.AddAdapter(ctx, key, bot.credentials())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot %s: %w", bot.ID, err)
	}

	s.mu.Lock()
	prev, existed := s.cache[key]
	s.cache[key] = cachedBot{bot: bot, adapter: adapter}
	s.mu.Unlock()

	if existed && prev.adapter != adapter {
		prev.adapter.Dispose()
	}

	logger.WithFields(logrus.Fields{
		"bot_id":   bot.ID,
		"platform": bot.Platform,
	}).Info("bot-initialized")
	return adapter, nil
}

// RemoveBot unregisters the bot from the manager and the local cache
func (s *Service) RemoveBot(bot Bot) {
	key := bot.Key()
	s.manager.RemoveAdapter(key)

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_id":   bot.ID,
		"platform": bot.Platform,
	}).Info("bot-removed")
}

// adapterFor looks up the cache first and falls back to the manager
func (s *Service) adapterFor(bot Bot) (messenger.Adapter, error) {
	key := bot.Key()

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return entry.adapter, nil
	}

	adapter, ok := s.manager.Adapter(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrBotNotInitialized)
	}

	s.mu.Lock()
	s.cache[key] = cachedBot{bot: bot, adapter: adapter}
	s.mu.Unlock()
	return adapter, nil
}

// SendMessage sends through an initialized bot
func (s *Service) SendMessage(ctx context.Context, bot Bot, chatID string, msg messenger.Message) (messenger.SendResult, error) {
	adapter, err := s.adapterFor(bot)
	if err != nil {
		return messenger.SendResult{}, err
	}
	return adapter.SendMessage(ctx, chatID, msg)
}

// SendMessageToMultipleBots sends the same message to chatID through each bot.
// Bots that were never initialized are recorded as failed.
func (s *Service) SendMessageToMultipleBots(ctx context.Context, bots []Bot, chatID string, msg messenger.Message) []Delivery {
	batchID := uuid.NewString()
	logger.WithFields(logrus.Fields{
		"batch_id": batchID,
		"bots":     len(bots),
		"chat_id":  chatID,
	}).Info("multi-bot-send-started")

	deliveries := make([]Delivery, 0, len(bots))
	for _, bot := range bots {
		adapter, err := s.adapterFor(bot)
		if err != nil {
			deliveries = append(deliveries, failedDelivery(bot, chatID, err))
			continue
		}
		deliveries = append(deliveries, s.deliver(ctx, batchID, bot, adapter, chatID, msg))
	}

	logBatchDone(batchID, deliveries)
	return deliveries
}

// SendToCrossPlatform sends msg to each bot's own channel, initializing bots
// that are not cached yet. One delivery is returned per bot.
func (s *Service) SendToCrossPlatform(ctx context.Context, bots []Bot, msg messenger.Message) []Delivery {
	return s.sendToChannels(ctx, bots, func(messenger.Adapter) messenger.Message { return msg })
}

// sendToChannels builds one message per bot with build and sends it to the
// bot's channel
func (s *Service) sendToChannels(ctx context.Context, bots []Bot, build func(messenger.Adapter) messenger.Message) []Delivery {
	batchID := uuid.NewString()
	logger.WithFields(logrus.Fields{
		"batch_id": batchID,
		"bots":     len(bots),
	}).Info("cross-platform-send-started")

	deliveries := make([]Delivery, 0, len(bots))
	for _, bot := range bots {
		deliveries = append(deliveries, s.sendToBotChannel(ctx, batchID, bot, build))
	}

	logBatchDone(batchID, deliveries)
	return deliveries
}

func (s *Service) sendToBotChannel(ctx context.Context, batchID string, bot Bot, build func(messenger.Adapter) messenger.Message) Delivery {
	if bot.ChannelID == "" {
		return failedDelivery(bot, "", ErrNoChannel)
	}

	adapter, err := s.adapterFor(bot)
	if err != nil {
		adapter, err = s.InitializeBot(ctx, bot)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"batch_id": batchID,
				"bot_id":   bot.ID,
				"error":    err,
			}).Warn("lazy-bot-initialization-failed")
			return failedDelivery(bot, bot.ChannelID, err)
		}
	}
	return s.deliver(ctx, batchID, bot, adapter, bot.ChannelID, build(adapter))
}

func (s *Service) deliver(ctx context.Context, batchID string, bot Bot, adapter messenger.Adapter, chatID string, msg messenger.Message) Delivery {
	res, err := adapter.SendMessage(ctx, chatID, msg)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"batch_id": batchID,
			"bot_id":   bot.ID,
			"platform": bot.Platform,
			"error":    err,
		}).Warn("bot-send-failed")
		return failedDelivery(bot, chatID, err)
	}
	return Delivery{BotID: bot.ID, BotName: bot.Name, Platform: bot.Platform, ChatID: chatID, SendResult: res}
}

func failedDelivery(bot Bot, chatID string, err error) Delivery {
	return Delivery{
		BotID:      bot.ID,
		BotName:    bot.Name,
		Platform:   bot.Platform,
		ChatID:     chatID,
		SendResult: messenger.SendResult{Error: err.Error()},
	}
}

func logBatchDone(batchID string, deliveries []Delivery) {
	ok := 0
	for _, d := range deliveries {
		if d.Success {
			ok++
		}
	}
	logger.WithFields(logrus.Fields{
		"batch_id":  batchID,
		"total":     len(deliveries),
		"succeeded": ok,
		"failed":    len(deliveries) - ok,
	}).Info("batch-send-finished")
}

// PublishPost renders post for each bot's platform and sends it to the bot's channel
func (s *Service) PublishPost(ctx context.Context, bots []Bot, post Post, opts PublishOptions) []Delivery {
	return s.sendToChannels(ctx, bots, func(adapter messenger.Adapter) messenger.Message {
		return RenderPost(post, opts, adapter)
	})
}

// BotsStatus re-fetches the identity of every cached bot, ordered by key
func (s *Service) BotsStatus(ctx context.Context) []BotStatus {
	s.mu.RLock()
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	entries := make(map[string]cachedBot, len(s.cache))
	for k, v := range s.cache {
		entries[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(keys)

	out := make([]BotStatus, 0, len(keys))
	for _, k := range keys {
		entry := entries[k]
		status := BotStatus{BotID: entry.bot.ID, Platform: entry.bot.Platform}
		info, err := entry.adapter.BotInfo(ctx)
		if err != nil {
			status.Error = err.Error()
		} else {
			status.Info = info
		}
		out = append(out, status)
	}
	return out
}

// SetupWebhook registers the webhook of an initialized bot
func (s *Service) SetupWebhook(ctx context.Context, bot Bot, opts messenger.WebhookOptions) error {
	adapter, err := s.adapterFor(bot)
	if err != nil {
		return err
	}
	return adapter.SetWebhook(ctx, opts)
}

// DeleteWebhook removes the webhook of an initialized bot
func (s *Service) DeleteWebhook(ctx context.Context, bot Bot) error {
	adapter, err := s.adapterFor(bot)
	if err != nil {
		return err
	}
	return adapter.DeleteWebhook(ctx)
}

// WebhookInfo reports the webhook of an initialized bot
func (s *Service) WebhookInfo(ctx context.Context, bot Bot) (*messenger.WebhookInfo, error) {
	adapter, err := s.adapterFor(bot)
	if err != nil {
		return nil, err
	}
	return adapter.GetWebhookInfo(ctx)
}

// ProcessUpdate normalizes an inbound payload for the cached bot botID on platform
func (s *Service) ProcessUpdate(platform messenger.Platform, botID string, raw []byte) (messenger.Update, Bot, error) {
	key := messenger.AdapterKey(botID, platform)

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok {
		return messenger.Update{}, Bot{}, fmt.Errorf("%s: %w", key, ErrBotNotInitialized)
	}
	return entry.adapter.ProcessWebhookUpdate(raw), entry.bot, nil
}

// Dispose disposes the manager and clears the local cache
func (s *Service) Dispose() {
	s.manager.Dispose()

	s.mu.Lock()
	s.cache = make(map[string]cachedBot)
	s.mu.Unlock()

	logger.Info("messenger-service-disposed")
}

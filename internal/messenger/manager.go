package messenger

import (
	"context"
	"sync"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/sirupsen/logrus"
)

// AdapterKey is the manager key for a bot on a platform
func AdapterKey(botID string, platform Platform) string {
	return botID + ":" + string(platform)
}

// BatchResult is one entry of a multi-adapter send
type BatchResult struct {
	Key      string   `json:"key"`
	Platform Platform `json:"platform"`
	SendResult
}

// Stats summarizes the live adapters
type Stats struct {
	Total      int              `json:"total"`
	ByPlatform map[Platform]int `json:"by_platform"`
}

// Manager owns initialized adapters keyed by bot identity
type Manager struct {
	registry *Registry

	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewManager creates an empty manager that builds adapters from registry
func NewManager(registry *Registry) *Manager {
	return &Manager{
		registry: registry,
		adapters: make(map[string]Adapter),
	}
}

// Registry returns the registry adapters are created from
func (m *Manager) Registry() *Registry {
	return m.registry
}

// AddAdapter creates, initializes and stores an adapter under key. An existing
// adapter under the same key is replaced without being disposed; callers that
// re-add a key own the old adapter.
func (m *Manager) AddAdapter(ctx context.Context, key string, creds Credentials) (Adapter, error) {
	adapter, err := m.registry.CreateAndInitialize(ctx, creds)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	_, existed := m.adapters[key]
	m.adapters[key] = adapter
	m.mu.Unlock()

	if existed {
		logger.WithField("key", key).Warn("adapter-key-overwritten")
	}
	logger.WithFields(logrus.Fields{
		"key":      key,
		"platform": creds.Platform,
	}).Info("adapter-added")
	return adapter, nil
}

// Adapter returns the adapter stored under key
func (m *Manager) Adapter(key string) (Adapter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.adapters[key]
	return a, ok
}

// AdaptersByPlatform returns every adapter of one platform
func (m *Manager) AdaptersByPlatform(platform Platform) []Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Adapter
	for _, a := range m.adapters {
		if a.Platform() == platform {
			out = append(out, a)
		}
	}
	return out
}

// AllAdapters returns a copy of the key to adapter map
func (m *Manager) AllAdapters() map[string]Adapter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Adapter, len(m.adapters))
	for k, a := range m.adapters {
		out[k] = a
	}
	return out
}

// RemoveAdapter disposes and forgets the adapter under key. Missing keys are ignored.
func (m *Manager) RemoveAdapter(key string) {
	m.mu.Lock()
	adapter, ok := m.adapters[key]
	delete(m.adapters, key)
	m.mu.Unlock()

	if !ok {
		return
	}
	adapter.Dispose()
	logger.WithField("key", key).Info("adapter-removed")
}

// SendMessageToMultipleAdapters sends the same message to chatID through each
// keyed adapter in order. Every key gets exactly one result.
func (m *Manager) SendMessageToMultipleAdapters(ctx context.Context, keys []string, chatID string, msg Message) []BatchResult {
	results := make([]BatchResult, 0, len(keys))
	for _, key := range keys {
		adapter, ok := m.Adapter(key)
		if !ok {
			results = append(results, BatchResult{Key: key, SendResult: sendFailed(ErrAdapterNotFound)})
			continue
		}
		results = append(results, m.sendOne(ctx, key, adapter, chatID, msg))
	}
	return results
}

// BroadcastMessage sends to chatID through the bot's adapter on each platform.
// Every requested platform gets one result; platforms without an adapter are
// reported as failed.
func (m *Manager) BroadcastMessage(ctx context.Context, botID string, platforms []Platform, chatID string, msg Message) []BatchResult {
	results := make([]BatchResult, 0, len(platforms))
	for _, p := range platforms {
		key := AdapterKey(botID, p)
		adapter, ok := m.Adapter(key)
		if !ok {
			results = append(results, BatchResult{Key: key, Platform: p, SendResult: sendFailed(ErrAdapterNotFound)})
			continue
		}
		results = append(results, m.sendOne(ctx, key, adapter, chatID, msg))
	}
	return results
}

func (m *Manager) sendOne(ctx context.Context, key string, adapter Adapter, chatID string, msg Message) BatchResult {
	res, err := adapter.SendMessage(ctx, chatID, msg)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"key":     key,
			"chat_id": chatID,
			"error":   err,
		}).Warn("adapter-send-failed")
		res = sendFailed(err)
	}
	return BatchResult{Key: key, Platform: adapter.Platform(), SendResult: res}
}

// Dispose disposes every adapter concurrently, waits for all and clears the manager
func (m *Manager) Dispose() {
	m.mu.Lock()
	adapters := m.adapters
	m.adapters = make(map[string]Adapter)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, a := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			a.Dispose()
		}(a)
	}
	wg.Wait()

	logger.WithField("count", len(adapters)).Info("manager-disposed")
}

// Stats counts live adapters in total and per platform
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Total: len(m.adapters), ByPlatform: make(map[Platform]int)}
	for _, a := range m.adapters {
		stats.ByPlatform[a.Platform()]++
	}
	return stats
}

package messenger

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// Constructor builds a fresh, uninitialized adapter
type Constructor func() Adapter

// Registry maps platforms to adapter constructors
type Registry struct {
	mu           sync.RWMutex
	constructors map[Platform]Constructor
}

// RegistryOptions tune the built-in adapters. Zero values use the public
// platform endpoints and the default request timeout.
type RegistryOptions struct {
	TelegramEndpoint string
	TelegramTimeout  time.Duration
	MaxBaseURL       string
	MaxTimeout       time.Duration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[Platform]Constructor)}
}

// NewDefaultRegistry creates a registry with Telegram and MAX registered
func NewDefaultRegistry(opts RegistryOptions) *Registry {
	r := NewRegistry()

	tgTimeout := opts.TelegramTimeout
	if tgTimeout <= 0 {
		tgTimeout = constants.DefaultRequestTimeout
	}
	r.Register(PlatformTelegram, func() Adapter {
		return NewTelegramAdapter(
			WithTelegramEndpoint(opts.TelegramEndpoint),
			WithTelegramHTTPClient(&http.Client{Timeout: tgTimeout}),
		)
	})

	maxTimeout := opts.MaxTimeout
	if maxTimeout <= 0 {
		maxTimeout = constants.DefaultRequestTimeout
	}
	r.Register(PlatformMax, func() Adapter {
		return NewMaxAdapter(
			WithMaxBaseURL(opts.MaxBaseURL),
			WithMaxHTTPClient(&http.Client{Timeout: maxTimeout}),
		)
	})

	return r
}

// Register adds or replaces the constructor for a platform
func (r *Registry) Register(platform Platform, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[platform] = ctor

	logger.WithField("platform", platform).Debug("adapter-constructor-registered")
}

// Create builds an uninitialized adapter for platform
func (r *Registry) Create(platform Platform) (Adapter, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[platform]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedPlatformError{Platform: platform}
	}
	return ctor(), nil
}

// CreateAndInitialize builds an adapter and initializes it with creds.
// Initialization errors are returned unchanged.
func (r *Registry) CreateAndInitialize(ctx context.Context, creds Credentials) (Adapter, error) {
	adapter, err := r.Create(creds.Platform)
	if err != nil {
		return nil, err
	}
	if err := adapter.Initialize(ctx, creds); err != nil {
		logger.WithFields(logrus.Fields{
			"platform": creds.Platform,
			"error":    err,
		}).Warn("adapter-initialization-failed")
		return nil, err
	}
	return adapter, nil
}

// SupportedPlatforms returns the registered platforms in sorted order
func (r *Registry) SupportedPlatforms() []Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Platform, 0, len(r.constructors))
	for p := range r.constructors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSupported reports whether platform has a constructor
func (r *Registry) IsSupported(platform Platform) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[platform]
	return ok
}

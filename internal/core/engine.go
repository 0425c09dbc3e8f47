package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// UpdateHandler receives every normalized inbound update
type UpdateHandler func(ctx context.Context, bot service.Bot, update messenger.Update)

// Engine is the composition root: it owns the adapter registry, the manager,
// the messenger service and the webhook server
type Engine struct {
	config   *Config
	registry *messenger.Registry
	service  *service.Service

	mu      sync.RWMutex
	handler UpdateHandler
	server  *http.Server
}

// NewRegistry builds the adapter registry for config with every built-in platform
func NewRegistry(config *Config) *messenger.Registry {
	registry := messenger.NewDefaultRegistry(config.RegistryOptions())

	discordTimeout := config.DiscordTimeout()
	registry.Register(messenger.PlatformDiscord, func() messenger.Adapter {
		return messenger.NewDiscordAdapter(messenger.NewDiscordSession(discordTimeout))
	})
	return registry
}

// NewEngine creates an Engine using the built-in platform adapters
func NewEngine(config *Config) *Engine {
	return NewEngineWithRegistry(config, NewRegistry(config))
}

// NewEngineWithRegistry creates an Engine whose adapters come from registry
func NewEngineWithRegistry(config *Config, registry *messenger.Registry) *Engine {
	return &Engine{
		config:   config,
		registry: registry,
		service:  service.New(messenger.NewManager(registry)),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() *Config {
	return e.config
}

// Service returns the messenger service
func (e *Engine) Service() *service.Service {
	return e.service
}

// SetUpdateHandler installs the callback for inbound updates
func (e *Engine) SetUpdateHandler(h UpdateHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

func (e *Engine) updateHandler() UpdateHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handler
}

// Bot resolves a configured, enabled bot. An empty platform matches the first bot with id.
func (e *Engine) Bot(id, platform string) (service.Bot, error) {
	cfg, err := e.config.GetBotConfig(id, platform)
	if err != nil {
		return service.Bot{}, err
	}
	return cfg.ToBot(), nil
}

// Bots resolves every enabled bot with id, one per platform
func (e *Engine) Bots(id string) []service.Bot {
	var out []service.Bot
	for _, cfg := range e.config.EnabledBots() {
		if cfg.ID == id {
			out = append(out, cfg.ToBot())
		}
	}
	return out
}

// InitializeBots initializes every enabled bot. Failures are logged and
// collected; the remaining bots are still initialized.
func (e *Engine) InitializeBots(ctx context.Context) (int, error) {
	var errs []error
	ok := 0
	for _, cfg := range e.config.EnabledBots() {
		if _, err := e.service.InitializeBot(ctx, cfg.ToBot()); err != nil {
			logger.WithFields(logrus.Fields{
				"bot_id":   cfg.ID,
				"platform": cfg.Platform,
				"error":    err,
			}).Error("failed-to-initialize-bot")
			errs = append(errs, err)
			continue
		}
		ok++
	}
	return ok, errors.Join(errs...)
}

// Run initializes the configured bots and serves webhooks until ctx is done
func (e *Engine) Run(ctx context.Context) error {
	logger.Info("starting-unibot-engine")

	started, err := e.InitializeBots(ctx)
	if started == 0 {
		if err == nil {
			err = errors.New("no enabled bots")
		}
		return fmt.Errorf("failed to initialize bots: %w", err)
	}
	logger.WithField("bots", started).Info("bots-initialized")

	addr := fmt.Sprintf(":%d", e.config.WebhookServer.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		e.service.Dispose()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logger.Info("engine-context-cancelled")
	case err = <-serveErr:
		if err != nil {
			logger.WithField("error", err).Error("webhook-server-error")
		}
	}

	if stopErr := e.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// Serve runs the webhook server on listener until Stop is called
func (e *Engine) Serve(listener net.Listener) error {
	server := &http.Server{
		Handler:     e.Handler(),
		ReadTimeout: constants.WebhookReadTimeout,
	}

	e.mu.Lock()
	e.server = server
	e.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"address":     listener.Addr().String(),
		"path_prefix": e.config.WebhookServer.PathPrefix,
	}).Info("webhook-server-listening")

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("webhook-server-stopped")
	return nil
}

// Stop shuts the webhook server down and disposes every adapter
func (e *Engine) Stop() error {
	logger.Info("stopping-unibot-engine")

	e.mu.Lock()
	server := e.server
	e.server = nil
	e.mu.Unlock()

	var err error
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Errorf("failed-to-gracefully-stop-webhook-server: %v", err)
			server.Close()
		} else {
			logger.Info("webhook-server-stopped-gracefully")
		}
	}

	e.service.Dispose()
	logger.Info("engine-stopped")
	return err
}

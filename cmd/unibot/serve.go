package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveValidate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook receiver",
	Long: `Initialize every enabled bot and receive platform updates over HTTP at
{path_prefix}/{platform}/{bot_id}. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, config, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serveValidate {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration is valid: %s\n", path)
			return nil
		}

		if err := initLogger(config, false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"config_file": path,
			"log_level":   config.Logging.Level,
			"log_file":    config.Logging.File,
			"port":        config.WebhookServer.Port,
			"bots":        len(config.EnabledBots()),
		}).Info("logger-initialized")

		engine := core.NewEngine(config)
		engine.SetUpdateHandler(logUpdate)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "unibot listening on :%d%s\n", config.WebhookServer.Port, config.WebhookServer.PathPrefix)
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

		if err := engine.Run(ctx); err != nil {
			return fmt.Errorf("engine error: %w", err)
		}
		logger.Info("unibot-stopped")
		return nil
	},
}

// logUpdate is the default update handler of the serve command
func logUpdate(ctx context.Context, bot service.Bot, update messenger.Update) {
	fields := logrus.Fields{
		"bot_id":      bot.ID,
		"platform":    bot.Platform,
		"update_id":   update.ID,
		"update_type": update.Type(),
	}
	switch event := update.Event.(type) {
	case messenger.MessageEvent:
		if event.Message != nil {
			fields["chat_id"] = event.Message.Chat.ID
			fields["text_length"] = len(event.Message.Text)
		}
	case messenger.BotStartedEvent:
		fields["chat_id"] = event.Chat.ID
		fields["payload"] = event.Payload
	}
	logger.WithFields(fields).Info("update-dispatched")
}

func init() {
	serveCmd.Flags().BoolVar(&serveValidate, "validate", false, "Validate configuration and exit")
}

package main

import (
	"errors"
	"fmt"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/spf13/cobra"
)

var (
	webhookBotID       string
	webhookPlatform    string
	webhookURL         string
	webhookSecret      string
	webhookDropPending bool
	webhookJSON        bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage platform webhooks of configured bots",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set --bot <id> --platform <p>",
	Short: "Point the platform webhook at this server",
	Long: `Register {public_url}{path_prefix}/{platform}/{bot_id} as the bot's webhook.
Use --url to register a different address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWebhookBot(cmd, func(engine *core.Engine, bot service.Bot) error {
			url := webhookURL
			if url == "" {
				cfg, err := engine.Config().GetBotConfig(bot.ID, string(bot.Platform))
				if err != nil {
					return err
				}
				url = engine.Config().WebhookURL(cfg)
			}
			if url == "" {
				return errors.New("webhook_server.public_url is not configured, pass --url")
			}

			err := engine.Service().SetupWebhook(cmd.Context(), bot, messenger.WebhookOptions{
				URL:                url,
				Secret:             webhookSecret,
				DropPendingUpdates: webhookDropPending,
			})
			if err != nil {
				return fmt.Errorf("failed to set webhook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Webhook set for %s/%s: %s\n", bot.Platform, bot.ID, url)
			return nil
		})
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete --bot <id> --platform <p>",
	Short: "Remove the platform webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWebhookBot(cmd, func(engine *core.Engine, bot service.Bot) error {
			if err := engine.Service().DeleteWebhook(cmd.Context(), bot); err != nil {
				return fmt.Errorf("failed to delete webhook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Webhook deleted for %s/%s\n", bot.Platform, bot.ID)
			return nil
		})
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info --bot <id> --platform <p>",
	Short: "Show the current platform webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWebhookBot(cmd, func(engine *core.Engine, bot service.Bot) error {
			info, err := engine.Service().WebhookInfo(cmd.Context(), bot)
			if err != nil {
				return fmt.Errorf("failed to get webhook info: %w", err)
			}
			w := cmd.OutOrStdout()
			if webhookJSON {
				return printJSON(w, info)
			}
			fmt.Fprintf(w, "%s/%s webhook:\n", bot.Platform, bot.ID)
			fmt.Fprintf(w, "  - URL: %s\n", info.URL)
			fmt.Fprintf(w, "  - Active: %v\n", info.IsActive)
			fmt.Fprintf(w, "  - Pending updates: %d\n", info.PendingUpdates)
			if info.LastError != "" {
				fmt.Fprintf(w, "  - Last error: %s\n", info.LastError)
			}
			return nil
		})
	},
}

// withWebhookBot initializes the selected bot and runs fn with it
func withWebhookBot(cmd *cobra.Command, fn func(*core.Engine, service.Bot) error) error {
	engine, err := newOneShotEngine()
	if err != nil {
		return err
	}
	defer engine.Stop()

	bot, err := engine.Bot(webhookBotID, webhookPlatform)
	if err != nil {
		return err
	}
	if _, err := engine.Service().InitializeBot(cmd.Context(), bot); err != nil {
		return err
	}
	return fn(engine, bot)
}

func init() {
	webhookCmd.PersistentFlags().StringVarP(&webhookBotID, "bot", "b", "", "Bot id from the configuration")
	webhookCmd.MarkPersistentFlagRequired("bot")
	webhookCmd.PersistentFlags().StringVarP(&webhookPlatform, "platform", "p", "", "Platform of the bot")
	webhookCmd.MarkPersistentFlagRequired("platform")

	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "Webhook URL (defaults to the configured public URL)")
	webhookSetCmd.Flags().StringVar(&webhookSecret, "secret", "", "Secret token sent back by the platform")
	webhookSetCmd.Flags().BoolVar(&webhookDropPending, "drop-pending", false, "Drop updates queued before the webhook was set")
	webhookInfoCmd.Flags().BoolVar(&webhookJSON, "json", false, "Output in JSON format")

	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
	webhookCmd.AddCommand(webhookInfoCmd)
}

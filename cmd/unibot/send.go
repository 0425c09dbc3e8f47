package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/spf13/cobra"
)

var (
	sendBotID    string
	sendPlatform string
	sendChatID   string
	sendFormat   string
	sendJSON     bool
)

var sendCmd = &cobra.Command{
	Use:   "send --bot <id> [--platform <p>] [--chat <id>] <text>",
	Short: "Send a text message through configured bots",
	Long: `Send one text message through every enabled bot with the given id, or only
the one on --platform. Without --chat the message goes to each bot's
configured channel_id.

Examples:
  unibot send --bot news "Deploy finished"
  unibot send --bot news --platform telegram --chat @ops --format html "<b>Done</b>"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newOneShotEngine()
		if err != nil {
			return err
		}
		defer engine.Stop()

		bots, err := selectBots(engine, sendBotID, sendPlatform)
		if err != nil {
			return err
		}

		msg := messenger.Message{
			Text:   strings.Join(args, " "),
			Format: messenger.TextFormat(sendFormat),
		}

		ctx := cmd.Context()
		var deliveries []service.Delivery
		if sendChatID == "" {
			deliveries = engine.Service().SendToCrossPlatform(ctx, bots, msg)
		} else {
			for _, bot := range bots {
				// SendMessageToMultipleBots records bots that failed to initialize
				engine.Service().InitializeBot(ctx, bot)
			}
			deliveries = engine.Service().SendMessageToMultipleBots(ctx, bots, sendChatID, msg)
		}

		return reportDeliveries(cmd.OutOrStdout(), deliveries, sendJSON)
	},
}

// selectBots resolves the enabled bots for id, narrowed to platform when set
func selectBots(engine *core.Engine, id, platform string) ([]service.Bot, error) {
	if id == "" {
		return nil, errors.New("--bot is required")
	}
	if platform != "" {
		bot, err := engine.Bot(id, platform)
		if err != nil {
			return nil, err
		}
		return []service.Bot{bot}, nil
	}
	bots := engine.Bots(id)
	if len(bots) == 0 {
		return nil, fmt.Errorf("no enabled bot with id %s", id)
	}
	return bots, nil
}

// reportDeliveries prints one line per delivery and fails when any delivery failed
func reportDeliveries(w io.Writer, deliveries []service.Delivery, asJSON bool) error {
	failed := 0
	for _, d := range deliveries {
		if !d.Success {
			failed++
		}
	}

	if asJSON {
		if err := printJSON(w, deliveries); err != nil {
			return err
		}
	} else {
		for _, d := range deliveries {
			if d.Success {
				fmt.Fprintf(w, "✓ %s/%s -> %s (message %s)\n", d.Platform, d.BotID, d.ChatID, d.MessageID)
			} else {
				fmt.Fprintf(w, "❌ %s/%s -> %s: %s\n", d.Platform, d.BotID, d.ChatID, d.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d deliveries failed", failed, len(deliveries))
	}
	return nil
}

func init() {
	sendCmd.Flags().StringVarP(&sendBotID, "bot", "b", "", "Bot id from the configuration")
	sendCmd.MarkFlagRequired("bot")
	sendCmd.Flags().StringVarP(&sendPlatform, "platform", "p", "", "Only send through the bot on this platform")
	sendCmd.Flags().StringVar(&sendChatID, "chat", "", "Target chat id (defaults to each bot's channel_id)")
	sendCmd.Flags().StringVarP(&sendFormat, "format", "f", "", "Text format: plain, markdown or html")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "Output in JSON format")
}

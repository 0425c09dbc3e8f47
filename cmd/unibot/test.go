package main

import (
	"fmt"
	"io"

	"github.com/keepmind9/unibot/internal/service"
	"github.com/spf13/cobra"
)

var (
	testBotID    string
	testPlatform string
	testJSON     bool
)

// ConnectionReport is the test result of one bot
type ConnectionReport struct {
	BotID    string `json:"bot_id"`
	Platform string `json:"platform"`
	service.ConnectionResult
}

var testCmd = &cobra.Command{
	Use:   "test --bot <id> [--platform <p>]",
	Short: "Test bot credentials and channel permissions",
	Long: `Connect with each selected bot's token, read the bot identity and, when a
channel_id is configured, the bot's permissions there. Nothing is registered
and no message is sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newOneShotEngine()
		if err != nil {
			return err
		}
		defer engine.Stop()

		bots, err := selectBots(engine, testBotID, testPlatform)
		if err != nil {
			return err
		}

		reports := make([]ConnectionReport, 0, len(bots))
		for _, bot := range bots {
			reports = append(reports, ConnectionReport{
				BotID:            bot.ID,
				Platform:         string(bot.Platform),
				ConnectionResult: engine.Service().TestBotConnection(cmd.Context(), bot),
			})
		}
		return reportConnections(cmd.OutOrStdout(), reports, testJSON)
	},
}

func reportConnections(w io.Writer, reports []ConnectionReport, asJSON bool) error {
	failed := 0
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}

	if asJSON {
		if err := printJSON(w, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if !r.Success {
				fmt.Fprintf(w, "❌ %s/%s: %s\n", r.Platform, r.BotID, r.Error)
				continue
			}
			fmt.Fprintf(w, "✓ %s/%s: @%s (id %s)\n", r.Platform, r.BotID, r.BotInfo.Username, r.BotInfo.ID)
			if p := r.Permissions; p != nil {
				fmt.Fprintf(w, "  - admin: %v, send messages: %v, pin messages: %v\n",
					p.IsAdmin, p.CanSendMessages, p.CanPinMessages)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d bots failed the connection test", failed, len(reports))
	}
	return nil
}

func init() {
	testCmd.Flags().StringVarP(&testBotID, "bot", "b", "", "Bot id from the configuration")
	testCmd.MarkFlagRequired("bot")
	testCmd.Flags().StringVarP(&testPlatform, "platform", "p", "", "Only test the bot on this platform")
	testCmd.Flags().BoolVar(&testJSON, "json", false, "Output in JSON format")
}

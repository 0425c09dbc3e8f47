package main

import (
	"fmt"
	"io"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/spf13/cobra"
)

var statusJSON bool

// StatusOutput is the status command report
type StatusOutput struct {
	Configured int                 `json:"configured"`
	Enabled    int                 `json:"enabled"`
	Bots       []service.BotStatus `json:"bots"`
	Errors     []string            `json:"errors,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status",
	Long:  "Initialize every enabled bot and display its identity or the error that prevents it from starting",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newOneShotEngine()
		if err != nil {
			return err
		}
		defer engine.Stop()

		out := StatusOutput{
			Configured: len(engine.Config().Bots),
			Enabled:    len(engine.Config().EnabledBots()),
		}
		if _, err := engine.InitializeBots(cmd.Context()); err != nil {
			logger.WithField("error", err).Debug("some-bots-failed-to-initialize")
			out.Errors = splitJoined(err)
		}
		out.Bots = engine.Service().BotsStatus(cmd.Context())

		return writeStatus(cmd.OutOrStdout(), out, statusJSON)
	},
}

// splitJoined flattens an errors.Join result into messages
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func writeStatus(w io.Writer, out StatusOutput, asJSON bool) error {
	if asJSON {
		return printJSON(w, out)
	}

	fmt.Fprintln(w, "unibot status:")
	fmt.Fprintf(w, "  - Bots configured: %d (enabled: %d)\n", out.Configured, out.Enabled)
	for _, s := range out.Bots {
		if s.Error != "" {
			fmt.Fprintf(w, "  ❌ %s/%s: %s\n", s.Platform, s.BotID, s.Error)
			continue
		}
		fmt.Fprintf(w, "  ✓ %s/%s: @%s\n", s.Platform, s.BotID, s.Info.Username)
	}
	if len(out.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}

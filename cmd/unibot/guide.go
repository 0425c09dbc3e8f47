package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/keepmind9/unibot/internal/validator"
	"github.com/spf13/cobra"
)

var guideJSON bool

var guideCmd = &cobra.Command{
	Use:   "guide [platform]",
	Short: "Explain how to obtain bot tokens and channel ids",
	Long: `Print where to get a bot token and a channel id for each platform, with
examples of the accepted formats. Without an argument every platform is shown.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: validator.Platforms(),
	RunE: func(cmd *cobra.Command, args []string) error {
		platforms := validator.Platforms()
		if len(args) == 1 {
			platforms = []string{strings.ToLower(args[0])}
		}

		guides := make([]validator.Guide, 0, len(platforms))
		for _, p := range platforms {
			g, ok := validator.GuideFor(p)
			if !ok {
				return fmt.Errorf("unsupported platform %q (supported: %s)", p, strings.Join(validator.Platforms(), ", "))
			}
			guides = append(guides, g)
		}
		return writeGuides(cmd.OutOrStdout(), guides, guideJSON)
	},
}

func writeGuides(w io.Writer, guides []validator.Guide, asJSON bool) error {
	if asJSON {
		return printJSON(w, guides)
	}
	for i, g := range guides {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", g.Platform)
		fmt.Fprintf(w, "  Token:   %s\n", g.TokenInstructions)
		fmt.Fprintf(w, "           e.g. %s\n", g.TokenExample)
		fmt.Fprintf(w, "  Channel: %s\n", g.ChatIDInstructions)
		fmt.Fprintf(w, "           e.g. %s\n", g.ChatIDExample)
	}
	return nil
}

func init() {
	guideCmd.Flags().BoolVar(&guideJSON, "json", false, "Output in JSON format")
}

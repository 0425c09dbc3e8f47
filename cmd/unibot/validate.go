package main

import (
	"fmt"
	"io"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/validator"
	"github.com/spf13/cobra"
)

var (
	validateShow   bool
	validateJSON   bool
	validateStrict bool
)

// BotValidation is the credential check of one configured bot
type BotValidation struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Enabled  bool   `json:"enabled"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Config   string          `json:"config"`
	Bots     int             `json:"bots"`
	Enabled  int             `json:"enabled"`
	Details  []BotValidation `json:"details,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate unibot configuration file",
	Long: `Validate the unibot configuration file without contacting any platform.

This command checks:
  - YAML syntax and environment variables
  - Webhook server and platform settings
  - Bot ids and platforms
  - Token and channel id formats

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors (or warnings with --strict)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigFile(configFile)
		if err != nil {
			return err
		}

		result := validateFile(path)
		if validateStrict && len(result.Warnings) > 0 {
			result.Valid = false
		}

		w := cmd.OutOrStdout()
		if validateShow && !validateJSON {
			showDetails(w, result)
		}
		outputValidationResult(w, result, validateJSON)

		if !result.Valid {
			return fmt.Errorf("configuration %s is invalid", path)
		}
		return nil
	},
}

// validateFile loads path and checks every bot's credentials
func validateFile(path string) ValidationResult {
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Config: path,
			Errors: []string{err.Error()},
		}
	}

	result := ValidationResult{
		Valid:   true,
		Config:  path,
		Bots:    len(cfg.Bots),
		Enabled: len(cfg.EnabledBots()),
	}

	for _, bot := range cfg.Bots {
		detail := BotValidation{ID: bot.ID, Platform: bot.Platform, Enabled: bot.Enabled, Valid: true}
		if err := validator.ValidateCredentials(bot.Platform, bot.Token, bot.ChannelID); err != nil {
			detail.Valid = false
			detail.Error = err.Error()
			// Enabled bots never get here, LoadConfig rejects them
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Disabled bot '%s' (%s) has invalid credentials: %v", bot.ID, bot.Platform, err))
		}
		if bot.Enabled && bot.ChannelID == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Bot '%s' (%s) has no channel_id - publish and send without --chat will fail", bot.ID, bot.Platform))
		}
		result.Details = append(result.Details, detail)
	}

	result.Warnings = append(result.Warnings, validateConfigDetails(cfg)...)
	return result
}

func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if len(cfg.EnabledBots()) == 0 {
		warnings = append(warnings, "No bots are enabled - serve will refuse to start")
	}
	if cfg.WebhookServer.PublicURL == "" {
		warnings = append(warnings, "webhook_server.public_url is not set - 'unibot webhook set' needs --url")
	}

	return warnings
}

func showDetails(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "Configuration: %s\n\n", result.Config)
	fmt.Fprintf(w, "Bots (%d):\n", len(result.Details))
	for _, bot := range result.Details {
		status := "disabled"
		if bot.Enabled {
			status = "enabled"
		}
		mark := "✓"
		if !bot.Valid {
			mark = "❌"
		}
		fmt.Fprintf(w, "  %s %s/%s: %s\n", mark, bot.Platform, bot.ID, status)
	}
	fmt.Fprintln(w)
}

func outputValidationResult(w io.Writer, result ValidationResult, jsonFormat bool) {
	if jsonFormat {
		if err := printJSON(w, result); err != nil {
			fmt.Fprintf(w, "{\"error\": %q}\n", err.Error())
		}
		return
	}

	if result.Valid {
		fmt.Fprintln(w, "✓ Configuration is valid")
		fmt.Fprintf(w, "  - Config: %s\n", result.Config)
		fmt.Fprintf(w, "  - Bots configured: %d (enabled: %d)\n", result.Bots, result.Enabled)
		if len(result.Warnings) > 0 {
			fmt.Fprintln(w, "\n⚠️  Warnings:")
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "  - %s\n", warning)
			}
		}
		return
	}

	fmt.Fprintln(w, "❌ Configuration validation failed:")
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", errMsg)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func init() {
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show per-bot details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
}

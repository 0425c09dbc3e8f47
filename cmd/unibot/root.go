package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "unibot",
	Short: "unibot is a unified messenger layer for Telegram, MAX and Discord bots",
	Long: `unibot drives Telegram, MAX and Discord bots through one platform
independent API: send and publish messages to many bots at once, manage
webhooks, check credentials and receive normalized updates over HTTP.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level in one-shot commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(webhookCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(versionCmd)
}

// defaultConfigLocations are searched in order when --config is not given
func defaultConfigLocations() []string {
	return []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/unibot/config.yaml"),
		"/etc/unibot/config.yaml",
	}
}

// resolveConfigFile returns the explicit path or the first existing default location
func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, loc := range defaultConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", fmt.Errorf("no configuration file found, pass --config or create one of: %v", defaultConfigLocations())
}

// loadConfig resolves, loads and validates the configuration
func loadConfig() (string, *core.Config, error) {
	path, err := resolveConfigFile(configFile)
	if err != nil {
		return "", nil, err
	}
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return path, nil, err
	}
	return path, cfg, nil
}

// initLogger installs the configured logger. One-shot commands only log
// warnings unless --verbose is set, so their output stays readable.
func initLogger(cfg *core.Config, oneShot bool) error {
	lc := cfg.LoggerConfig()
	if oneShot && !verbose {
		lc.Level = "warn"
	}
	return logger.InitLogger(lc)
}

// newOneShotEngine loads configuration and builds an engine for a single command
func newOneShotEngine() (*core.Engine, error) {
	_, cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogger(cfg, true); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return core.NewEngine(cfg), nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

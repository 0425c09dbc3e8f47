package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// UpdateForwarder posts raw platform updates to a running webhook receiver
type UpdateForwarder struct {
	client  *http.Client
	timeout time.Duration
}

// Forward sends data to url and returns the receiver's request id
func (f *UpdateForwarder) Forward(ctx context.Context, url string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constants.HTTPSuccessStatusCode {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return resp.Header.Get("X-Request-Id"), nil
}

var (
	replayBotID    string
	replayPlatform string
	replayPort     int
	replayURL      string
	replayFile     string

	replayCmd = &cobra.Command{
		Use:   "replay --bot <id> --platform <p>",
		Short: "Forward a raw platform update to the local webhook receiver",
		Long: `Reads a raw update payload from stdin (or --file) and posts it to the
running 'unibot serve' exactly as the platform would.

Examples:
  cat update.json | unibot replay --bot news --platform telegram
  unibot replay --bot news --platform max --file bot_started.json --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readReplayInput(cmd.InOrStdin(), replayFile)
			if err != nil {
				return err
			}

			url := replayURL
			if url == "" {
				if url, err = localWebhookURL(); err != nil {
					return err
				}
			}

			logger.WithFields(logrus.Fields{
				"bot_id":   replayBotID,
				"platform": replayPlatform,
				"url":      url,
				"size":     len(data),
			}).Debug("forwarding-update-to-receiver")

			forwarder := &UpdateForwarder{timeout: constants.DefaultRequestTimeout}
			requestID, err := forwarder.Forward(cmd.Context(), url, data)
			if err != nil {
				return fmt.Errorf("replay failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Update accepted (request %s)\n", requestID)
			return nil
		},
	}
)

func readReplayInput(stdin io.Reader, file string) ([]byte, error) {
	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read update: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no update data received")
	}
	return data, nil
}

// localWebhookURL builds the receiver URL of the configured bot on localhost
func localWebhookURL() (string, error) {
	_, cfg, err := loadConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	bot, err := cfg.GetBotConfig(replayBotID, replayPlatform)
	if err != nil {
		return "", err
	}
	port := cfg.WebhookServer.Port
	if replayPort != 0 {
		port = replayPort
	}
	return fmt.Sprintf("http://localhost:%d%s", port, cfg.WebhookPath(bot)), nil
}

func init() {
	replayCmd.Flags().StringVarP(&replayBotID, "bot", "b", "", "Bot id from the configuration")
	replayCmd.MarkFlagRequired("bot")
	replayCmd.Flags().StringVarP(&replayPlatform, "platform", "p", "", "Platform of the bot")
	replayCmd.MarkFlagRequired("platform")
	replayCmd.Flags().IntVar(&replayPort, "port", 0, "Receiver port (defaults to webhook_server.port)")
	replayCmd.Flags().StringVar(&replayURL, "url", "", "Full receiver URL, skips the configuration")
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "Read the update from a file instead of stdin")
}

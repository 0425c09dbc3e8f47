package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// Handler returns the webhook HTTP handler. Updates are accepted at
// {path_prefix}/{platform}/{bot_id}.
func (e *Engine) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(e.config.WebhookServer.PathPrefix+"/", e.handleWebhookRequest)
	return mux
}

// handleWebhookRequest handles one inbound platform update
//
// This function:
// 1. Validates the request (POST method, known bot in the path)
// 2. Reads the raw body
// 3. Normalizes it through the bot's adapter
// 4. Hands the update to the installed UpdateHandler
//
// Platforms retry deliveries that are not answered with 200, so every update
// for a known bot is acknowledged even when the payload is not recognized.
func (e *Engine) handleWebhookRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	platform, botID, ok := e.parseWebhookPath(r.URL.Path)
	if !ok {
		logger.WithField("path", r.URL.Path).Warn("malformed-webhook-path")
		http.Error(w, "Bot not found", http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxWebhookBodySize))
	if err != nil {
		logger.WithField("error", err).Warn("failed-to-read-webhook-body")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(data) == 0 {
		logger.Warn("empty-request-body-in-webhook-request")
		http.Error(w, "Empty request body", http.StatusBadRequest)
		return
	}

	update, bot, err := e.service.ProcessUpdate(platform, botID, data)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"platform": platform,
			"bot_id":   botID,
		}).Warn("webhook-for-unknown-bot")
		http.Error(w, "Bot not found", http.StatusNotFound)
		return
	}

	requestID := uuid.NewString()
	log := logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"platform":    platform,
		"bot_id":      botID,
		"update_id":   update.ID,
		"update_type": update.Type(),
	})
	if !update.Recognized() {
		log.Debug("unrecognized-webhook-update")
	} else {
		log.Info("webhook-update-received")
	}

	if handler := e.updateHandler(); handler != nil {
		handler(r.Context(), bot, update)
	}

	w.Header().Set("X-Request-Id", requestID)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// parseWebhookPath splits {prefix}/{platform}/{bot_id}
func (e *Engine) parseWebhookPath(path string) (messenger.Platform, string, bool) {
	rest := strings.TrimPrefix(path, e.config.WebhookServer.PathPrefix+"/")
	if rest == path {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return messenger.Platform(parts[0]), parts[1], true
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/keepmind9/unibot/internal/core"
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportDeliveries tests delivery output and the failure summary
func TestReportDeliveries(t *testing.T) {
	deliveries := []service.Delivery{
		{BotID: "news", Platform: messenger.PlatformTelegram, ChatID: "@news", SendResult: messenger.SendResult{Success: true, MessageID: "7"}},
		{BotID: "news", Platform: messenger.PlatformMax, ChatID: "123", SendResult: messenger.SendResult{Error: "rate limit exceeded"}},
	}

	var out bytes.Buffer
	err := reportDeliveries(&out, deliveries, false)
	assert.EqualError(t, err, "1 of 2 deliveries failed")
	assert.Contains(t, out.String(), "✓ telegram/news -> @news (message 7)")
	assert.Contains(t, out.String(), "❌ max/news -> 123: rate limit exceeded")

	out.Reset()
	require.NoError(t, reportDeliveries(&out, deliveries[:1], true))
	var decoded []service.Delivery
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "7", decoded[0].MessageID)
}

// TestSelectBots tests bot resolution by id and platform
func TestSelectBots(t *testing.T) {
	engine := core.NewEngine(&core.Config{Bots: []core.BotConfig{
		{ID: "news", Platform: "telegram", Enabled: true},
		{ID: "news", Platform: "max", Enabled: true},
		{ID: "old", Platform: "max"},
	}})

	bots, err := selectBots(engine, "news", "")
	require.NoError(t, err)
	assert.Len(t, bots, 2)

	bots, err = selectBots(engine, "news", "max")
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, messenger.PlatformMax, bots[0].Platform)

	_, err = selectBots(engine, "old", "")
	assert.ErrorContains(t, err, "no enabled bot with id old")

	_, err = selectBots(engine, "", "")
	assert.Error(t, err)
}

// TestSplitJoined tests flattening joined initialization errors
func TestSplitJoined(t *testing.T) {
	err := errors.Join(errors.New("a failed"), errors.New("b failed"))
	assert.Equal(t, []string{"a failed", "b failed"}, splitJoined(err))
	assert.Equal(t, []string{"single"}, splitJoined(errors.New("single")))
}

// TestWriteStatus tests the human readable status report
func TestWriteStatus(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeStatus(&out, StatusOutput{
		Configured: 2,
		Enabled:    1,
		Bots: []service.BotStatus{
			{BotID: "news", Platform: messenger.PlatformTelegram, Info: &messenger.BotInfo{Username: "news_bot"}},
			{BotID: "alerts", Platform: messenger.PlatformMax, Error: "token rejected"},
		},
		Errors: []string{"bot x failed"},
	}, false))

	text := out.String()
	assert.Contains(t, text, "Bots configured: 2 (enabled: 1)")
	assert.Contains(t, text, "✓ telegram/news: @news_bot")
	assert.Contains(t, text, "❌ max/alerts: token rejected")
	assert.Contains(t, text, "  - bot x failed")
}

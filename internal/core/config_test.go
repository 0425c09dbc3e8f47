package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTelegramToken = "123456789:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghi"
	testMaxToken      = "f9LHodD0cOKiEz4Ru3bMyuaZ0dk4jGXv1s8Rj9wLLcZ"
)

// TestLoadConfig_ValidConfig_ReturnsConfigStruct tests loading a file with env expansion
func TestLoadConfig_ValidConfig_ReturnsConfigStruct(t *testing.T) {
	configContent := `
webhook_server:
  port: 9090
  path_prefix: hooks/
  public_url: https://bots.example.com/
platforms:
  max:
    base_url: https://max.example.com
    timeout: 3s
bots:
  - id: news
    name: News
    platform: telegram
    token: "${TEST_TG_TOKEN}"
    channel_id: "@news_channel"
    enabled: true
  - id: news
    platform: max
    token: "${TEST_MAX_TOKEN}"
    channel_id: "123456789"
    enabled: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))

	t.Setenv("TEST_TG_TOKEN", testTelegramToken)
	t.Setenv("TEST_MAX_TOKEN", testMaxToken)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.WebhookServer.Port)
	assert.Equal(t, "/hooks", config.WebhookServer.PathPrefix)
	assert.Equal(t, "https://bots.example.com", config.WebhookServer.PublicURL)
	require.Len(t, config.Bots, 2)
	assert.Equal(t, testTelegramToken, config.Bots[0].Token)
	assert.Equal(t, testMaxToken, config.Bots[1].Token)

	opts := config.RegistryOptions()
	assert.Equal(t, "https://max.example.com", opts.MaxBaseURL)
	assert.Equal(t, 3*time.Second, opts.MaxTimeout)
	assert.Equal(t, 10*time.Second, opts.TelegramTimeout)
	assert.Equal(t, 10*time.Second, config.DiscordTimeout())

	assert.Equal(t, "/hooks/telegram/news", config.WebhookPath(config.Bots[0]))
	assert.Equal(t, "https://bots.example.com/hooks/max/news", config.WebhookURL(config.Bots[1]))
}

// TestLoadConfig_MissingFile tests the read error
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// TestParseConfig_Defaults tests default filling
func TestParseConfig_Defaults(t *testing.T) {
	config, err := ParseConfig([]byte(`
bots:
  - id: news
    platform: telegram
    token: "` + testTelegramToken + `"
    enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultWebhookPort, config.WebhookServer.Port)
	assert.Equal(t, DefaultWebhookPathPrefix, config.WebhookServer.PathPrefix)
	assert.Equal(t, DefaultPlatformTimeout, config.Platforms.Telegram.Timeout)
	assert.Equal(t, DefaultPlatformTimeout, config.Platforms.Max.Timeout)
	assert.Equal(t, DefaultPlatformTimeout, config.Platforms.Discord.Timeout)
	assert.Equal(t, DefaultLogLevel, config.Logging.Level)
	assert.Equal(t, DefaultLogMaxSize, config.Logging.MaxSize)
	assert.Equal(t, DefaultLogMaxBackups, config.Logging.MaxBackups)
	assert.Equal(t, DefaultLogMaxAge, config.Logging.MaxAge)
	assert.True(t, config.Logging.EnableStdout)
	assert.Empty(t, config.WebhookURL(config.Bots[0]))

	lc := config.LoggerConfig()
	assert.Equal(t, DefaultLogLevel, lc.Level)
	assert.True(t, lc.EnableStdout)
}

// TestParseConfig_PathPrefix tests prefix normalization
func TestParseConfig_PathPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"webhook", "/webhook"},
		{"/webhook/", "/webhook"},
		{"/a/b", "/a/b"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			config, err := ParseConfig([]byte(`
webhook_server:
  path_prefix: "` + tt.prefix + `"
bots:
  - id: news
    platform: telegram
    token: "` + testTelegramToken + `"
    enabled: true
`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, config.WebhookServer.PathPrefix)
			assert.Equal(t, tt.want+"/telegram/news", config.WebhookPath(config.Bots[0]))
		})
	}
}

// TestParseConfig_Errors tests validation failures
func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name:    "missing env variable",
			yaml:    "bots:\n  - id: a\n    platform: telegram\n    token: ${UNIBOT_TEST_UNSET_VAR}\n",
			wantErr: []string{"missing required environment variables", "UNIBOT_TEST_UNSET_VAR"},
		},
		{
			name:    "invalid yaml",
			yaml:    "bots: [",
			wantErr: []string{"failed to parse config"},
		},
		{
			name:    "no bots",
			yaml:    "webhook_server:\n  port: 8080\n",
			wantErr: []string{"at least one bot must be configured"},
		},
		{
			name:    "port out of range",
			yaml:    "webhook_server:\n  port: 70000\nbots:\n  - id: a\n    platform: telegram\n",
			wantErr: []string{"webhook_server.port"},
		},
		{
			name:    "bad timeout",
			yaml:    "platforms:\n  max:\n    timeout: soon\nbots:\n  - id: a\n    platform: max\n",
			wantErr: []string{"invalid timeout for platform max"},
		},
		{
			name:    "missing id",
			yaml:    "bots:\n  - platform: telegram\n",
			wantErr: []string{"bots[0]: id is required"},
		},
		{
			name:    "duplicate bot",
			yaml:    "bots:\n  - id: a\n    platform: max\n  - id: a\n    platform: max\n",
			wantErr: []string{"duplicate bot a on platform max"},
		},
		{
			name:    "invalid token on enabled bot",
			yaml:    "bots:\n  - id: a\n    platform: telegram\n    token: nope\n    enabled: true\n",
			wantErr: []string{"bot a", "token"},
		},
		{
			name:    "invalid channel on enabled bot",
			yaml:    "bots:\n  - id: a\n    platform: max\n    token: " + testMaxToken + "\n    channel_id: \"@channel\"\n    enabled: true\n",
			wantErr: []string{"bot a", "channel_id"},
		},
		{
			name:    "unsupported platform",
			yaml:    "bots:\n  - id: a\n    platform: signal\n    token: x\n    enabled: true\n",
			wantErr: []string{"bot a", "platform"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

// TestParseConfig_DisabledBotsSkipCredentialChecks tests that only enabled bots are validated
func TestParseConfig_DisabledBotsSkipCredentialChecks(t *testing.T) {
	config, err := ParseConfig([]byte(`
bots:
  - id: draft
    platform: telegram
    token: not-a-token
  - id: draft
    platform: max
    token: ` + testMaxToken + `
    enabled: true
`))
	require.NoError(t, err)

	enabled := config.EnabledBots()
	require.Len(t, enabled, 1)
	assert.Equal(t, "max", enabled[0].Platform)
}

// TestConfig_GetBotConfig tests lookup by id and platform
func TestConfig_GetBotConfig(t *testing.T) {
	config := &Config{Bots: []BotConfig{
		{ID: "news", Platform: "telegram", Token: "t1", Enabled: true},
		{ID: "news", Platform: "max", Token: "m1", Enabled: true},
		{ID: "old", Platform: "telegram", Enabled: false},
	}}

	bot, err := config.GetBotConfig("news", "max")
	require.NoError(t, err)
	assert.Equal(t, "m1", bot.Token)

	bot, err = config.GetBotConfig("news", "")
	require.NoError(t, err)
	assert.Equal(t, "telegram", bot.Platform)

	_, err = config.GetBotConfig("old", "")
	assert.ErrorContains(t, err, "disabled")

	_, err = config.GetBotConfig("news", "discord")
	assert.ErrorContains(t, err, "not found")

	_, err = config.GetBotConfig("missing", "")
	assert.ErrorContains(t, err, "bot missing not found")
}

// TestBotConfig_ToBot tests conversion for the service layer
func TestBotConfig_ToBot(t *testing.T) {
	cfg := BotConfig{
		ID:             "news",
		Name:           "News",
		Platform:       "max",
		Token:          testMaxToken,
		ChannelID:      "123",
		AdditionalData: map[string]string{"k": "v"},
	}
	bot := cfg.ToBot()

	assert.Equal(t, "news", bot.ID)
	assert.Equal(t, "News", bot.Name)
	assert.Equal(t, messenger.PlatformMax, bot.Platform)
	assert.Equal(t, testMaxToken, bot.Token)
	assert.Equal(t, "123", bot.ChannelID)
	assert.Equal(t, "v", bot.AdditionalData["k"])
	assert.Equal(t, "news:max", bot.Key())
}

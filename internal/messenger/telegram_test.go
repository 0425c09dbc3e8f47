package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTelegramToken = "123456789:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghi"

// fakeTelegram is an in-process Bot API that records every call
type fakeTelegram struct {
	mu       sync.Mutex
	calls    map[string]int
	forms    map[string][]url.Values
	handlers map[string]func(form url.Values) string
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *httptest.Server) {
	t.Helper()
	f := &fakeTelegram{
		calls: make(map[string]int),
		forms: make(map[string][]url.Values),
		handlers: map[string]func(url.Values) string{
			"getMe": func(url.Values) string {
				return `{"ok":true,"result":{"id":987654,"is_bot":true,"first_name":"Unibot","username":"unibot_test_bot"}}`
			},
			"sendMessage": func(url.Values) string {
				return `{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":1,"type":"private"}}}`
			},
			"sendPhoto": func(url.Values) string {
				return `{"ok":true,"result":{"message_id":43,"date":1700000000,"chat":{"id":1,"type":"private"}}}`
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		f.mu.Lock()
		f.calls[method]++
		f.forms[method] = append(f.forms[method], r.PostForm)
		handler, ok := f.handlers[method]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found: method not found"}`)
			return
		}
		fmt.Fprint(w, handler(r.PostForm))
	}))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeTelegram) handle(method string, h func(url.Values) string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakeTelegram) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeTelegram) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeTelegram) lastForm(method string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	forms := f.forms[method]
	if len(forms) == 0 {
		return nil
	}
	return forms[len(forms)-1]
}

func newTestTelegramAdapter(server *httptest.Server) *TelegramAdapter {
	return NewTelegramAdapter(
		WithTelegramEndpoint(server.URL+"/bot%s/%s"),
		WithTelegramHTTPClient(server.Client()),
	)
}

func readyTelegramAdapter(t *testing.T) (*TelegramAdapter, *fakeTelegram) {
	t.Helper()
	fake, server := newFakeTelegram(t)
	adapter := newTestTelegramAdapter(server)
	require.NoError(t, adapter.Initialize(context.Background(), Credentials{
		Platform: PlatformTelegram,
		Token:    testTelegramToken,
	}))
	return adapter, fake
}

// TestTelegramAdapter_InitializeRejectsMalformedToken tests that bad tokens never reach the network
func TestTelegramAdapter_InitializeRejectsMalformedToken(t *testing.T) {
	fake, server := newFakeTelegram(t)
	adapter := newTestTelegramAdapter(server)

	err := adapter.Initialize(context.Background(), Credentials{Platform: PlatformTelegram, Token: "not-a-token"})

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	var invalid *InvalidTokenError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, fake.total())
}

// TestTelegramAdapter_InitializeUnauthorized tests that a rejected getMe is an authentication error
func TestTelegramAdapter_InitializeUnauthorized(t *testing.T) {
	fake, server := newFakeTelegram(t)
	fake.handle("getMe", func(url.Values) string {
		return `{"ok":false,"error_code":401,"description":"Unauthorized"}`
	})
	adapter := newTestTelegramAdapter(server)

	err := adapter.Initialize(context.Background(), Credentials{Platform: PlatformTelegram, Token: testTelegramToken})

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 1, fake.count("getMe"))

	_, err = adapter.SendMessage(context.Background(), "12345", Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// TestTelegramAdapter_BotInfoIsCached tests that the identity is fetched once per lifetime
func TestTelegramAdapter_BotInfoIsCached(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	for i := 0; i < 3; i++ {
		info, err := adapter.BotInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "unibot_test_bot", info.Username)
		assert.Equal(t, "987654", info.ID)
		assert.True(t, info.IsActive)
	}
	assert.Equal(t, 1, fake.count("getMe"))
}

// TestTelegramAdapter_NotInitialized tests that network operations fail before initialization
func TestTelegramAdapter_NotInitialized(t *testing.T) {
	fake, server := newFakeTelegram(t)
	adapter := newTestTelegramAdapter(server)
	ctx := context.Background()

	_, err := adapter.SendMessage(ctx, "12345", Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = adapter.SendMessageToMultiple(ctx, []string{"1", "2"}, Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = adapter.BotInfo(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = adapter.GetChat(ctx, "12345")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = adapter.GetWebhookInfo(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, adapter.DeleteWebhook(ctx), ErrNotInitialized)
	assert.Equal(t, Permissions{}, adapter.CheckBotPermissions(ctx, "12345"))

	assert.Equal(t, 0, fake.total())
}

// TestTelegramAdapter_Dispose tests that a disposed adapter makes no further requests
func TestTelegramAdapter_Dispose(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)
	before := fake.total()

	adapter.Dispose()

	_, err := adapter.SendMessage(context.Background(), "12345", Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = adapter.BotInfo(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, before, fake.total())

	// Dispose is idempotent
	adapter.Dispose()
}

// TestTelegramAdapter_SendMessageWithKeyboard tests markup, parse mode and reply wiring
func TestTelegramAdapter_SendMessageWithKeyboard(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	res, err := adapter.SendMessage(context.Background(), "-1001234567890", Message{
		Text:             "*hello*",
		Format:           FormatMarkdown,
		ReplyToMessageID: "7",
		Keyboard: &Keyboard{
			Type: KeyboardInline,
			Buttons: [][]Button{
				{{Text: "Yes", Type: ButtonCallback, Data: "yes"}, {Text: "No", Type: ButtonCallback, Data: "no"}},
				{{Text: "Docs", Type: ButtonURL, URL: "https://example.com"}},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "42", res.MessageID)

	form := fake.lastForm("sendMessage")
	require.NotNil(t, form)
	assert.Equal(t, "-1001234567890", form.Get("chat_id"))
	assert.Equal(t, "MarkdownV2", form.Get("parse_mode"))
	assert.Equal(t, "7", form.Get("reply_to_message_id"))

	var markup struct {
		InlineKeyboard [][]struct {
			Text         string `json:"text"`
			CallbackData string `json:"callback_data"`
			URL          string `json:"url"`
		} `json:"inline_keyboard"`
	}
	require.NoError(t, json.Unmarshal([]byte(form.Get("reply_markup")), &markup))
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 1)
	assert.Equal(t, "yes", markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "https://example.com", markup.InlineKeyboard[1][0].URL)
}

// TestTelegramAdapter_SendMessageToUsername tests @username chat targets
func TestTelegramAdapter_SendMessageToUsername(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	res, err := adapter.SendMessage(context.Background(), "@unibot_channel", Message{Text: "hi"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "@unibot_channel", fake.lastForm("sendMessage").Get("chat_id"))
	assert.Empty(t, fake.lastForm("sendMessage").Get("parse_mode"))
}

// TestTelegramAdapter_SendMessageInvalidChat tests that malformed chat ids fail without I/O
func TestTelegramAdapter_SendMessageInvalidChat(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	res, err := adapter.SendMessage(context.Background(), "not a chat", Message{Text: "hi"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.MessageID)
	assert.Equal(t, 0, fake.count("sendMessage"))
}

// TestTelegramAdapter_SendMessageFailures tests the split between failed results and rate limits
func TestTelegramAdapter_SendMessageFailures(t *testing.T) {
	t.Run("platform error is a failed result", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		fake.handle("sendMessage", func(url.Values) string {
			return `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
		})

		res, err := adapter.SendMessage(context.Background(), "12345", Message{Text: "hi"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "chat not found")
		assert.Empty(t, res.MessageID)
	})

	t.Run("rate limit is returned as error", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		fake.handle("sendMessage", func(url.Values) string {
			return `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`
		})

		_, err := adapter.SendMessage(context.Background(), "12345", Message{Text: "hi"})
		var rl *RateLimitError
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 3*time.Second, rl.RetryAfter)
		assert.Equal(t, PlatformTelegram, rl.Platform)
	})
}

// TestTelegramAdapter_SendMessageToMultiple tests one result per recipient in order
func TestTelegramAdapter_SendMessageToMultiple(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)
	fake.handle("sendMessage", func(form url.Values) string {
		switch form.Get("chat_id") {
		case "222":
			return `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`
		case "333":
			return `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":1}}`
		}
		return `{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":1,"type":"private"}}}`
	})

	results, err := adapter.SendMessageToMultiple(context.Background(), []string{"111", "222", "333", "444"}, Message{Text: "hi"})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "blocked")
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "rate limit")
	assert.True(t, results[3].Success)
	assert.Equal(t, 4, fake.count("sendMessage"))

	empty, err := adapter.SendMessageToMultiple(context.Background(), nil, Message{Text: "hi"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestTelegramAdapter_SendPhotoWithCaption tests that short text becomes the media caption
func TestTelegramAdapter_SendPhotoWithCaption(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	res, err := adapter.SendMessage(context.Background(), "12345", Message{
		Text:        "look",
		Attachments: []Attachment{{Type: AttachmentPhoto, URL: "https://example.com/cat.png"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "43", res.MessageID)
	assert.Equal(t, 0, fake.count("sendMessage"))

	form := fake.lastForm("sendPhoto")
	require.NotNil(t, form)
	assert.Equal(t, "look", form.Get("caption"))
	assert.Equal(t, "https://example.com/cat.png", form.Get("photo"))
}

// TestTelegramAdapter_SendLongTextBeforeMedia tests that oversized captions go out as a separate message
func TestTelegramAdapter_SendLongTextBeforeMedia(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	res, err := adapter.SendMessage(context.Background(), "12345", Message{
		Text:        strings.Repeat("a", 2000),
		Attachments: []Attachment{{Type: AttachmentPhoto, Token: "AgACAgIAAxkBAAI"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "42", res.MessageID)
	assert.Equal(t, 1, fake.count("sendMessage"))
	assert.Equal(t, 1, fake.count("sendPhoto"))
	assert.Empty(t, fake.lastForm("sendPhoto").Get("caption"))
}

// TestTelegramAdapter_TruncatesLongText tests truncation to the platform limit
func TestTelegramAdapter_TruncatesLongText(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)

	_, err := adapter.SendMessage(context.Background(), "12345", Message{Text: strings.Repeat("é", 5000)})
	require.NoError(t, err)
	assert.Equal(t, 4096, len([]rune(fake.lastForm("sendMessage").Get("text"))))
}

// TestTelegramAdapter_ProcessWebhookUpdate tests update normalization
func TestTelegramAdapter_ProcessWebhookUpdate(t *testing.T) {
	adapter := NewTelegramAdapter()

	tests := []struct {
		name       string
		raw        string
		wantType   UpdateType
		recognized bool
		check      func(t *testing.T, u Update)
	}{
		{
			name:       "text message",
			raw:        `{"update_id":1,"message":{"message_id":10,"date":1700000000,"chat":{"id":-100,"type":"supergroup","title":"Team"},"from":{"id":7,"first_name":"Ann","username":"ann"},"text":"hello"}}`,
			wantType:   UpdateMessage,
			recognized: true,
			check: func(t *testing.T, u Update) {
				ev := u.Event.(MessageEvent)
				assert.Equal(t, "1", u.ID)
				assert.Equal(t, "10", ev.Message.ID)
				assert.Equal(t, "hello", ev.Message.Text)
				assert.Equal(t, ChatSupergroup, ev.Message.Chat.Type)
				assert.Equal(t, "ann", ev.Message.From.Username)
			},
		},
		{
			name:       "start command in private chat",
			raw:        `{"update_id":2,"message":{"message_id":11,"date":1700000000,"chat":{"id":7,"type":"private","first_name":"Ann"},"from":{"id":7,"first_name":"Ann"},"text":"/start ref42"}}`,
			wantType:   UpdateBotStarted,
			recognized: true,
			check: func(t *testing.T, u Update) {
				ev := u.Event.(BotStartedEvent)
				assert.Equal(t, "ref42", ev.Payload)
				assert.Equal(t, "7", ev.User.ID)
			},
		},
		{
			name:       "callback query",
			raw:        `{"update_id":3,"callback_query":{"id":"cb1","from":{"id":7,"first_name":"Ann"},"data":"yes","chat_instance":"x"}}`,
			wantType:   UpdateCallbackQuery,
			recognized: true,
			check: func(t *testing.T, u Update) {
				ev := u.Event.(CallbackQueryEvent)
				assert.Equal(t, "cb1", ev.Query.ID)
				assert.Equal(t, "yes", ev.Query.Data)
				assert.Equal(t, "7", ev.Query.From.ID)
			},
		},
		{
			name:       "bot added",
			raw:        `{"update_id":4,"my_chat_member":{"chat":{"id":-100,"type":"group","title":"G"},"from":{"id":7,"first_name":"Ann"},"date":1,"old_chat_member":{"user":{"id":1,"first_name":"b"},"status":"left"},"new_chat_member":{"user":{"id":1,"first_name":"b"},"status":"member"}}}`,
			wantType:   UpdateBotAdded,
			recognized: true,
		},
		{
			name:       "bot removed",
			raw:        `{"update_id":5,"my_chat_member":{"chat":{"id":-100,"type":"group","title":"G"},"from":{"id":7,"first_name":"Ann"},"date":1,"old_chat_member":{"user":{"id":1,"first_name":"b"},"status":"member"},"new_chat_member":{"user":{"id":1,"first_name":"b"},"status":"kicked"}}}`,
			wantType:   UpdateBotRemoved,
			recognized: true,
			check: func(t *testing.T, u Update) {
				ev := u.Event.(BotRemovedEvent)
				assert.Equal(t, "G", ev.Chat.Title)
			},
		},
		{
			name:       "channel post",
			raw:        `{"update_id":6,"channel_post":{"message_id":12,"date":1700000000,"chat":{"id":-100,"type":"channel","title":"News"},"text":"post"}}`,
			wantType:   UpdateMessage,
			recognized: true,
		},
		{
			name:       "unknown shape",
			raw:        `{"update_id":7,"poll":{"id":"p"}}`,
			wantType:   UpdateMessage,
			recognized: false,
		},
		{
			name:       "not json",
			raw:        `<<garbage>>`,
			wantType:   UpdateMessage,
			recognized: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := adapter.ProcessWebhookUpdate([]byte(tt.raw))
			assert.Equal(t, PlatformTelegram, u.Platform)
			assert.Equal(t, tt.wantType, u.Type())
			assert.Equal(t, tt.recognized, u.Recognized())
			assert.Equal(t, tt.raw, string(u.Raw))
			if tt.check != nil {
				tt.check(t, u)
			}
		})
	}
}

// TestTelegramAdapter_FormatText tests escaping per format
func TestTelegramAdapter_FormatText(t *testing.T) {
	adapter := NewTelegramAdapter()

	assert.Equal(t, `a\_b\*c\.`, adapter.FormatText("a_b*c.", FormatMarkdown))
	assert.Equal(t, `\\`, adapter.FormatText(`\`, FormatMarkdown))
	assert.Equal(t, "&lt;b&gt; &amp;", adapter.FormatText("<b> &", FormatHTML))
	assert.Equal(t, "a_b <b>", adapter.FormatText("a_b <b>", FormatPlain))
}

// TestTelegramAdapter_CheckBotPermissions tests role mapping
func TestTelegramAdapter_CheckBotPermissions(t *testing.T) {
	t.Run("private chat needs no lookup", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		assert.Equal(t, FullPermissions(), adapter.CheckBotPermissions(context.Background(), "12345"))
		assert.Equal(t, 0, fake.count("getChatMember"))
	})

	t.Run("administrator", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		fake.handle("getChatMember", func(form url.Values) string {
			return `{"ok":true,"result":{"user":{"id":987654,"is_bot":true,"first_name":"Unibot"},"status":"administrator","can_edit_messages":true,"can_pin_messages":true,"can_manage_chat":true}}`
		})

		perms := adapter.CheckBotPermissions(context.Background(), "@unibot_channel")
		assert.True(t, perms.IsAdmin)
		assert.True(t, perms.CanSendMessages)
		assert.True(t, perms.CanEditMessages)
		assert.False(t, perms.CanDeleteMessages)
		assert.Equal(t, "987654", fake.lastForm("getChatMember").Get("user_id"))
	})

	t.Run("kicked", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		fake.handle("getChatMember", func(url.Values) string {
			return `{"ok":true,"result":{"user":{"id":987654,"is_bot":true,"first_name":"Unibot"},"status":"kicked"}}`
		})
		assert.Equal(t, Permissions{}, adapter.CheckBotPermissions(context.Background(), "-100123"))
	})

	t.Run("lookup failure", func(t *testing.T) {
		adapter, fake := readyTelegramAdapter(t)
		fake.handle("getChatMember", func(url.Values) string {
			return `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
		})
		assert.Equal(t, Permissions{}, adapter.CheckBotPermissions(context.Background(), "-100123"))
	})
}

// TestTelegramAdapter_GetChat tests chat lookup and type mapping
func TestTelegramAdapter_GetChat(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)
	fake.handle("getChat", func(url.Values) string {
		return `{"ok":true,"result":{"id":-1001234567890,"type":"channel","title":"News","username":"news_channel"}}`
	})

	chat, err := adapter.GetChat(context.Background(), "@news_channel")
	require.NoError(t, err)
	assert.Equal(t, "-1001234567890", chat.ID)
	assert.Equal(t, ChatChannel, chat.Type)
	assert.Equal(t, "News", chat.Title)
	assert.Equal(t, PlatformTelegram, chat.Platform)
}

// TestTelegramAdapter_GetUserUnsupported tests the user lookup capability gap
func TestTelegramAdapter_GetUserUnsupported(t *testing.T) {
	adapter, _ := readyTelegramAdapter(t)

	_, err := adapter.GetUser(context.Background(), "7")
	assert.True(t, IsUnsupported(err))
}

// TestTelegramAdapter_Webhooks tests webhook registration round trips
func TestTelegramAdapter_Webhooks(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)
	fake.handle("setWebhook", func(url.Values) string { return `{"ok":true,"result":true}` })
	fake.handle("deleteWebhook", func(url.Values) string { return `{"ok":true,"result":true}` })
	fake.handle("getWebhookInfo", func(url.Values) string {
		return `{"ok":true,"result":{"url":"https://example.com/hook","has_custom_certificate":false,"pending_update_count":2,"max_connections":40}}`
	})
	ctx := context.Background()

	require.NoError(t, adapter.SetWebhook(ctx, WebhookOptions{URL: "https://example.com/hook", MaxConnections: 40}))
	form := fake.lastForm("setWebhook")
	assert.Equal(t, "https://example.com/hook", form.Get("url"))
	assert.Equal(t, "40", form.Get("max_connections"))

	info, err := adapter.GetWebhookInfo(ctx)
	require.NoError(t, err)
	assert.True(t, info.IsActive)
	assert.Equal(t, 2, info.PendingUpdates)

	require.NoError(t, adapter.DeleteWebhook(ctx))
	assert.Equal(t, 1, fake.count("deleteWebhook"))
}

// TestTelegramAdapter_WebhookInfoFailure tests that lookup failures report an inactive webhook
func TestTelegramAdapter_WebhookInfoFailure(t *testing.T) {
	adapter, fake := readyTelegramAdapter(t)
	fake.handle("getWebhookInfo", func(url.Values) string {
		return `{"ok":false,"error_code":500,"description":"Internal Server Error"}`
	})

	info, err := adapter.GetWebhookInfo(context.Background())
	require.NoError(t, err)
	assert.False(t, info.IsActive)
	assert.Equal(t, PlatformTelegram, info.Platform)
}

// TestMapTelegramError tests error taxonomy mapping of non-API errors
func TestMapTelegramError(t *testing.T) {
	err := mapTelegramError(errors.New("connection refused"))
	var platformErr *Error
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, PlatformTelegram, platformErr.Platform)
	assert.Contains(t, err.Error(), "connection refused")
}

package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/validator"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

var markdownV2Escaper = strings.NewReplacer(
	`\`, `\\`, "_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`, "=", `\=`,
	"|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// TelegramAdapter implements Adapter for the Telegram Bot HTTP API
type TelegramAdapter struct {
	lifecycle
	endpoint string
	client   tgbotapi.HTTPClient
	bot      *tgbotapi.BotAPI
}

// TelegramOption customizes a TelegramAdapter
type TelegramOption func(*TelegramAdapter)

// WithTelegramEndpoint overrides the API endpoint format ("https://host/bot%s/%s")
func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(t *TelegramAdapter) {
		if endpoint != "" {
			t.endpoint = endpoint
		}
	}
}

// WithTelegramHTTPClient replaces the HTTP client used for API calls
func WithTelegramHTTPClient(client tgbotapi.HTTPClient) TelegramOption {
	return func(t *TelegramAdapter) {
		if client != nil {
			t.client = client
		}
	}
}

// NewTelegramAdapter creates an uninitialized Telegram adapter
func NewTelegramAdapter(opts ...TelegramOption) *TelegramAdapter {
	t := &TelegramAdapter{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: constants.DefaultRequestTimeout},
	}
	t.platform = PlatformTelegram
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Platform returns PlatformTelegram
func (t *TelegramAdapter) Platform() Platform { return PlatformTelegram }

// Initialize checks the token format, calls getMe and caches the bot identity
func (t *TelegramAdapter) Initialize(ctx context.Context, creds Credentials) error {
	if !t.ValidateToken(creds.Token) {
		return &AuthenticationError{
			Platform: PlatformTelegram,
			Message:  "token rejected before any request",
			Err:      &InvalidTokenError{Platform: PlatformTelegram},
		}
	}

	logger.WithFields(logrus.Fields{
		"token": maskSecret(creds.Token),
	}).Info("initializing-telegram-adapter")

	_ = tgbotapi.SetLogger(logger.GetLogger())

	bot, err := tgbotapi.NewBotAPIWithClient(creds.Token, t.endpoint, t.client)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err,
		}).Error("failed-to-initialize-telegram-adapter")
		return &AuthenticationError{
			Platform: PlatformTelegram,
			Message:  "getMe readiness check failed",
			Err:      mapTelegramError(err),
		}
	}

	t.mu.Lock()
	t.bot = bot
	t.creds = creds.clone()
	t.botInfo = telegramBotInfo(bot.Self)
	t.ready = true
	t.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": bot.Self.UserName,
		"bot_id":       bot.Self.ID,
	}).Info("telegram-adapter-initialized-successfully")
	return nil
}

// api returns the live client or ErrNotInitialized
func (t *TelegramAdapter) api() (*tgbotapi.BotAPI, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready || t.bot == nil {
		return nil, ErrNotInitialized
	}
	return t.bot, nil
}

// BotInfo returns the cached identity or fetches it once
func (t *TelegramAdapter) BotInfo(ctx context.Context) (*BotInfo, error) {
	bot, err := t.api()
	if err != nil {
		return nil, err
	}
	if info, ok := t.cachedBotInfo(); ok {
		return info, nil
	}

	self, err := bot.GetMe()
	if err != nil {
		return nil, &AuthenticationError{Platform: PlatformTelegram, Message: "getMe failed", Err: mapTelegramError(err)}
	}
	info := telegramBotInfo(self)
	t.storeBotInfo(info)
	return info, nil
}

// SendMessage sends text, attachments and keyboard to one chat
func (t *TelegramAdapter) SendMessage(ctx context.Context, chatID string, msg Message) (SendResult, error) {
	bot, err := t.api()
	if err != nil {
		return SendResult{}, err
	}

	outgoing, err := t.buildOutgoing(chatID, msg)
	if err != nil {
		return sendFailed(err), nil
	}

	var first tgbotapi.Message
	for i, c := range outgoing {
		sent, err := bot.Send(c)
		if err != nil {
			mapped := mapTelegramError(err)
			if IsRateLimit(mapped) {
				return SendResult{}, mapped
			}
			logger.WithFields(logrus.Fields{
				"chat_id": chatID,
				"error":   mapped,
			}).Error("failed-to-send-message-to-telegram")
			return sendFailed(mapped), nil
		}
		if i == 0 {
			first = sent
		}
	}

	logger.WithField("chat_id", chatID).Info("message-sent-to-telegram")
	return sendOK(strconv.Itoa(first.MessageID), first), nil
}

// SendMessageToMultiple sends to every chat sequentially under the rate budget
func (t *TelegramAdapter) SendMessageToMultiple(ctx context.Context, chatIDs []string, msg Message) ([]SendResult, error) {
	if err := t.ensureReady(); err != nil {
		return nil, err
	}
	return sendSequential(ctx, PlatformTelegram, t.Limits(), chatIDs, msg, t.SendMessage), nil
}

// telegramOutgoing defers BaseChat assembly until reply and markup placement is known
type telegramOutgoing func(base tgbotapi.BaseChat) tgbotapi.Chattable

// buildOutgoing translates a unified message into the API calls that deliver it.
// The reply reference goes on the first call, the keyboard on the last.
func (t *TelegramAdapter) buildOutgoing(chatID string, msg Message) ([]tgbotapi.Chattable, error) {
	id, username, err := parseTelegramChat(chatID)
	if err != nil {
		return nil, err
	}

	replyTo := 0
	if msg.ReplyToMessageID != "" {
		if replyTo, err = strconv.Atoi(msg.ReplyToMessageID); err != nil {
			return nil, fmt.Errorf("invalid reply message id %q: %w", msg.ReplyToMessageID, err)
		}
	}

	limits := t.Limits()
	parseMode := telegramParseMode(msg.Format)
	text := truncateText(PlatformTelegram, msg.Text, limits.MaxMessageLength)

	// Short text rides along as the caption of the first captionable attachment
	captionUsed := len(msg.Attachments) > 0 && text != "" &&
		msg.Attachments[0].Caption == "" &&
		telegramCaptionable(msg.Attachments[0].Type) &&
		utf8.RuneCountInString(text) <= limits.MaxCaptionLength

	var steps []telegramOutgoing
	if text != "" && !captionUsed {
		steps = append(steps, func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.MessageConfig{BaseChat: base, Text: text, ParseMode: parseMode}
		})
	}
	for i, att := range msg.Attachments {
		caption := att.Caption
		if i == 0 && captionUsed {
			caption = text
		}
		step, err := telegramAttachment(att, truncateText(PlatformTelegram, caption, limits.MaxCaptionLength), parseMode)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, errors.New("message has no text and no attachments")
	}

	markup := t.replyMarkup(msg.Keyboard)
	out := make([]tgbotapi.Chattable, 0, len(steps))
	for i, step := range steps {
		base := tgbotapi.BaseChat{ChatID: id, ChannelUsername: username}
		if i == 0 {
			base.ReplyToMessageID = replyTo
		}
		if i == len(steps)-1 && markup != nil {
			base.ReplyMarkup = markup
		}
		out = append(out, step(base))
	}
	return out, nil
}

func telegramCaptionable(t AttachmentType) bool {
	switch t {
	case AttachmentPhoto, AttachmentVideo, AttachmentAudio, AttachmentDocument:
		return true
	}
	return false
}

func telegramAttachment(att Attachment, caption, parseMode string) (telegramOutgoing, error) {
	if att.Type == AttachmentLocation {
		lat, lon, ok := att.coordinates()
		if !ok {
			return nil, errors.New("location attachment requires latitude and longitude metadata")
		}
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.LocationConfig{BaseChat: base, Latitude: lat, Longitude: lon}
		}, nil
	}

	var file tgbotapi.RequestFileData
	switch {
	case att.Token != "":
		file = tgbotapi.FileID(att.Token)
	case att.URL != "":
		file = tgbotapi.FileURL(att.URL)
	default:
		return nil, fmt.Errorf("%s attachment has neither url nor token", att.Type)
	}

	switch att.Type {
	case AttachmentPhoto:
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.PhotoConfig{BaseFile: tgbotapi.BaseFile{BaseChat: base, File: file}, Caption: caption, ParseMode: parseMode}
		}, nil
	case AttachmentVideo:
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.VideoConfig{BaseFile: tgbotapi.BaseFile{BaseChat: base, File: file}, Caption: caption, ParseMode: parseMode}
		}, nil
	case AttachmentAudio:
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.AudioConfig{BaseFile: tgbotapi.BaseFile{BaseChat: base, File: file}, Caption: caption, ParseMode: parseMode}
		}, nil
	case AttachmentSticker:
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.StickerConfig{BaseFile: tgbotapi.BaseFile{BaseChat: base, File: file}}
		}, nil
	default:
		// Unknown media degrades to a generic document
		return func(base tgbotapi.BaseChat) tgbotapi.Chattable {
			return tgbotapi.DocumentConfig{BaseFile: tgbotapi.BaseFile{BaseChat: base, File: file}, Caption: caption, ParseMode: parseMode}
		}, nil
	}
}

// replyMarkup converts a unified keyboard into Telegram markup, nil when empty
func (t *TelegramAdapter) replyMarkup(kb *Keyboard) interface{} {
	rows := clampKeyboard(PlatformTelegram, kb, t.Limits())
	if len(rows) == 0 {
		return nil
	}

	if kb.Type == KeyboardReply {
		keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
		for _, row := range rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, telegramReplyButton(b))
			}
			keyboard = append(keyboard, buttons)
		}
		return tgbotapi.NewReplyKeyboard(keyboard...)
	}

	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telegramInlineButton(b))
		}
		keyboard = append(keyboard, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// telegramInlineButton maps every button type onto url or callback buttons
func telegramInlineButton(b Button) tgbotapi.InlineKeyboardButton {
	if (b.Type == ButtonURL || b.Type == ButtonApp) && b.URL != "" {
		return tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL)
	}
	data := b.Data
	if data == "" {
		data = b.Text
	}
	return tgbotapi.NewInlineKeyboardButtonData(b.Text, data)
}

func telegramReplyButton(b Button) tgbotapi.KeyboardButton {
	switch b.Type {
	case ButtonContact:
		return tgbotapi.NewKeyboardButtonContact(b.Text)
	case ButtonLocation:
		return tgbotapi.NewKeyboardButtonLocation(b.Text)
	}
	return tgbotapi.NewKeyboardButton(b.Text)
}

func telegramParseMode(format TextFormat) string {
	switch format {
	case FormatMarkdown:
		return tgbotapi.ModeMarkdownV2
	case FormatHTML:
		return tgbotapi.ModeHTML
	}
	return ""
}

// parseTelegramChat splits a chat id into its numeric or @username form
func parseTelegramChat(chatID string) (int64, string, error) {
	if !validator.TelegramChatID(chatID) {
		return 0, "", fmt.Errorf("invalid telegram chat id %q", chatID)
	}
	if strings.HasPrefix(chatID, "@") {
		return 0, chatID, nil
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return id, "", nil
}

// GetChat looks up a chat by numeric id or @username
func (t *TelegramAdapter) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	bot, err := t.api()
	if err != nil {
		return nil, err
	}
	id, username, err := parseTelegramChat(chatID)
	if err != nil {
		return nil, &Error{Platform: PlatformTelegram, Message: err.Error(), Err: err}
	}

	chat, err := bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: id, SuperGroupUsername: username},
	})
	if err != nil {
		return nil, mapTelegramError(err)
	}
	converted := telegramChat(chat)
	return &converted, nil
}

// GetUser is not offered by the Bot API outside of a message context
func (t *TelegramAdapter) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := t.ensureReady(); err != nil {
		return nil, err
	}
	return nil, &UnsupportedOperationError{Platform: PlatformTelegram, Operation: "user lookup"}
}

// SetWebhook registers the webhook URL
func (t *TelegramAdapter) SetWebhook(ctx context.Context, opts WebhookOptions) error {
	bot, err := t.api()
	if err != nil {
		return err
	}

	wh, err := tgbotapi.NewWebhook(opts.URL)
	if err != nil {
		return &Error{Platform: PlatformTelegram, Message: fmt.Sprintf("invalid webhook url %q", opts.URL), Err: err}
	}
	wh.MaxConnections = opts.MaxConnections
	wh.AllowedUpdates = opts.AllowedUpdates
	wh.DropPendingUpdates = opts.DropPendingUpdates
	if opts.Secret != "" {
		logger.Debug("telegram-webhook-secret-ignored")
	}

	if _, err := bot.Request(wh); err != nil {
		return mapTelegramError(err)
	}
	logger.WithField("url", opts.URL).Info("telegram-webhook-set")
	return nil
}

// DeleteWebhook removes the webhook registration
func (t *TelegramAdapter) DeleteWebhook(ctx context.Context) error {
	bot, err := t.api()
	if err != nil {
		return err
	}
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return mapTelegramError(err)
	}
	logger.Info("telegram-webhook-deleted")
	return nil
}

// GetWebhookInfo reports the current webhook; lookup failures yield an inactive result
func (t *TelegramAdapter) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	bot, err := t.api()
	if err != nil {
		return nil, err
	}

	info, err := bot.GetWebhookInfo()
	if err != nil {
		logger.WithField("error", mapTelegramError(err)).Warn("failed-to-get-telegram-webhook-info")
		return &WebhookInfo{Platform: PlatformTelegram}, nil
	}
	return &WebhookInfo{
		URL:            info.URL,
		IsActive:       info.URL != "",
		MaxConnections: info.MaxConnections,
		PendingUpdates: info.PendingUpdateCount,
		LastError:      info.LastErrorMessage,
		Platform:       PlatformTelegram,
	}, nil
}

// ProcessWebhookUpdate normalizes a Telegram update payload
func (t *TelegramAdapter) ProcessWebhookUpdate(raw []byte) Update {
	var upd tgbotapi.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		logger.WithField("error", err).Debug("unparseable-telegram-update")
		return unrecognizedUpdate(PlatformTelegram, "", raw)
	}

	out := Update{
		ID:       strconv.Itoa(upd.UpdateID),
		Platform: PlatformTelegram,
		Event:    MessageEvent{},
		Raw:      copyRaw(raw),
	}

	switch {
	case upd.MyChatMember != nil:
		out.Event = telegramMembershipEvent(upd.MyChatMember)
	case upd.CallbackQuery != nil:
		out.Event = CallbackQueryEvent{Query: telegramCallback(upd.CallbackQuery)}
	case upd.Message != nil:
		out.Event = telegramMessageEvent(upd.Message)
	case upd.ChannelPost != nil:
		out.Event = MessageEvent{Message: telegramIncoming(upd.ChannelPost)}
	case upd.EditedMessage != nil:
		out.Event = MessageEvent{Message: telegramIncoming(upd.EditedMessage)}
	case upd.EditedChannelPost != nil:
		out.Event = MessageEvent{Message: telegramIncoming(upd.EditedChannelPost)}
	}
	return out
}

func telegramMessageEvent(m *tgbotapi.Message) Event {
	incoming := telegramIncoming(m)
	text := strings.TrimSpace(m.Text)
	if incoming.Chat.Type == ChatPrivate && incoming.From != nil &&
		(text == "/start" || strings.HasPrefix(text, "/start ")) {
		return BotStartedEvent{
			Chat:    incoming.Chat,
			User:    *incoming.From,
			Payload: strings.TrimSpace(strings.TrimPrefix(text, "/start")),
		}
	}
	return MessageEvent{Message: incoming}
}

func telegramMembershipEvent(m *tgbotapi.ChatMemberUpdated) Event {
	chat := telegramChat(m.Chat)
	from := telegramUser(&m.From)

	switch m.NewChatMember.Status {
	case "left", "kicked":
		return BotRemovedEvent{Chat: chat, User: from}
	case "restricted":
		if !m.NewChatMember.IsMember {
			return BotRemovedEvent{Chat: chat, User: from}
		}
	}
	return BotAddedEvent{Chat: chat, User: from}
}

func telegramCallback(q *tgbotapi.CallbackQuery) CallbackQuery {
	out := CallbackQuery{ID: q.ID, Data: q.Data, From: User{Platform: PlatformTelegram}}
	if u := telegramUser(q.From); u != nil {
		out.From = *u
	}
	if q.Message != nil {
		out.Message = telegramIncoming(q.Message)
	}
	return out
}

func telegramIncoming(m *tgbotapi.Message) *IncomingMessage {
	out := &IncomingMessage{
		ID:   strconv.Itoa(m.MessageID),
		Chat: Chat{Platform: PlatformTelegram},
		From: telegramUser(m.From),
		Text: m.Text,
		Date: time.Unix(int64(m.Date), 0).UTC(),
	}
	if out.Text == "" {
		out.Text = m.Caption
	}
	if m.Chat != nil {
		out.Chat = telegramChat(*m.Chat)
	}
	if m.ReplyToMessage != nil {
		out.ReplyToMessageID = strconv.Itoa(m.ReplyToMessage.MessageID)
	}
	return out
}

func telegramChat(c tgbotapi.Chat) Chat {
	chatType := ChatType(c.Type)
	switch chatType {
	case ChatPrivate, ChatGroup, ChatSupergroup, ChatChannel:
	default:
		chatType = ChatGroup
	}

	title := c.Title
	if title == "" {
		title = strings.TrimSpace(c.FirstName + " " + c.LastName)
	}
	return Chat{
		ID:       strconv.FormatInt(c.ID, 10),
		Type:     chatType,
		Title:    title,
		Username: c.UserName,
		Platform: PlatformTelegram,
	}
}

func telegramUser(u *tgbotapi.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        strconv.FormatInt(u.ID, 10),
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Platform:  PlatformTelegram,
	}
}

func telegramBotInfo(u tgbotapi.User) *BotInfo {
	return &BotInfo{
		ID:        strconv.FormatInt(u.ID, 10),
		Username:  u.UserName,
		FirstName: u.FirstName,
		Platform:  PlatformTelegram,
		IsActive:  true,
	}
}

// ValidateToken checks the "<id>:<secret>" token grammar
func (t *TelegramAdapter) ValidateToken(token string) bool {
	return validator.TelegramToken(token)
}

// ValidateChatID accepts @username or a signed non-zero integer
func (t *TelegramAdapter) ValidateChatID(chatID string) bool {
	return validator.TelegramChatID(chatID)
}

// FormatText escapes MarkdownV2 or HTML special characters
func (t *TelegramAdapter) FormatText(text string, format TextFormat) string {
	switch format {
	case FormatMarkdown:
		return markdownV2Escaper.Replace(text)
	case FormatHTML:
		return tgbotapi.EscapeText(tgbotapi.ModeHTML, text)
	}
	return text
}

// Limits returns Telegram's static limits
func (t *TelegramAdapter) Limits() Limits {
	return Limits{
		MaxMessageLength:   constants.MaxTelegramMessageLength,
		MaxCaptionLength:   constants.MaxTelegramCaptionLength,
		MaxButtonsPerRow:   constants.MaxTelegramButtonsPerRow,
		MaxButtonRows:      constants.MaxTelegramButtonRows,
		RateLimitPerSecond: constants.TelegramRateLimitPerSecond,
		RateLimitPerMinute: constants.TelegramRateLimitPerMinute,
	}
}

// CheckBotPermissions resolves the bot's role in a chat. Positive numeric ids
// are private chats and get full permissions without a request.
func (t *TelegramAdapter) CheckBotPermissions(ctx context.Context, chatID string) Permissions {
	bot, err := t.api()
	if err != nil {
		return Permissions{}
	}
	id, username, err := parseTelegramChat(chatID)
	if err != nil {
		return Permissions{}
	}
	if username == "" && id > 0 {
		return FullPermissions()
	}

	member, err := bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID:             id,
			SuperGroupUsername: username,
			UserID:             bot.Self.ID,
		},
	})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   mapTelegramError(err),
		}).Warn("failed-to-check-telegram-bot-permissions")
		return Permissions{}
	}
	return telegramPermissions(member)
}

func telegramPermissions(m tgbotapi.ChatMember) Permissions {
	switch {
	case m.IsCreator():
		return FullPermissions()
	case m.IsAdministrator():
		return Permissions{
			CanSendMessages:   true,
			CanEditMessages:   m.CanEditMessages,
			CanDeleteMessages: m.CanDeleteMessages,
			CanPinMessages:    m.CanPinMessages,
			CanManageChat:     m.CanManageChat,
			IsAdmin:           true,
		}
	case m.Status == "member":
		return Permissions{CanSendMessages: true}
	case m.Status == "restricted":
		return Permissions{CanSendMessages: m.CanSendMessages}
	}
	return Permissions{}
}

// Dispose drops the client, credentials and cached identity
func (t *TelegramAdapter) Dispose() {
	t.mu.Lock()
	t.bot = nil
	t.resetLocked()
	t.mu.Unlock()

	logger.Info("telegram-adapter-disposed")
}

// mapTelegramError converts API envelopes into the error taxonomy
func mapTelegramError(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return &AuthenticationError{Platform: PlatformTelegram, Message: apiErr.Message}
		case http.StatusTooManyRequests:
			return &RateLimitError{
				Platform:   PlatformTelegram,
				RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
				Message:    apiErr.Message,
			}
		}
		return &Error{
			Platform:   PlatformTelegram,
			Code:       apiErr.Code,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &Error{Platform: PlatformTelegram, Message: err.Error(), Err: err}
}

package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/maxapi"
	"github.com/keepmind9/unibot/internal/validator"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// MaxAdapter implements Adapter for the MAX Bot API
type MaxAdapter struct {
	lifecycle
	baseURL    string
	httpClient *http.Client
	client     *maxapi.Client
}

// MaxOption customizes a MaxAdapter
type MaxOption func(*MaxAdapter)

// WithMaxBaseURL overrides the API base URL
func WithMaxBaseURL(baseURL string) MaxOption {
	return func(m *MaxAdapter) {
		if baseURL != "" {
			m.baseURL = baseURL
		}
	}
}

// WithMaxHTTPClient replaces the HTTP client used for API calls
func WithMaxHTTPClient(client *http.Client) MaxOption {
	return func(m *MaxAdapter) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// NewMaxAdapter creates an uninitialized MAX adapter
func NewMaxAdapter(opts ...MaxOption) *MaxAdapter {
	m := &MaxAdapter{
		baseURL:    constants.DefaultMaxBaseURL,
		httpClient: &http.Client{Timeout: constants.DefaultRequestTimeout},
	}
	m.platform = PlatformMax
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Platform returns PlatformMax
func (m *MaxAdapter) Platform() Platform { return PlatformMax }

// Initialize checks the token format, calls /me and caches the bot identity
func (m *MaxAdapter) Initialize(ctx context.Context, creds Credentials) error {
	if !m.ValidateToken(creds.Token) {
		return &AuthenticationError{
			Platform: PlatformMax,
			Message:  "token rejected before any request",
			Err:      &InvalidTokenError{Platform: PlatformMax},
		}
	}

	logger.WithFields(logrus.Fields{
		"token":    maskSecret(creds.Token),
		"base_url": m.baseURL,
	}).Info("initializing-max-adapter")

	client := maxapi.New(creds.Token, maxapi.WithBaseURL(m.baseURL), maxapi.WithHTTPClient(m.httpClient))
	me, err := client.GetMe(ctx)
	if err != nil {
		logger.WithField("error", err).Error("failed-to-initialize-max-adapter")
		return &AuthenticationError{
			Platform: PlatformMax,
			Message:  "/me readiness check failed",
			Err:      mapMaxError(err),
		}
	}

	m.mu.Lock()
	m.client = client
	m.creds = creds.clone()
	m.botInfo = maxBotInfo(me)
	m.ready = true
	m.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": me.Username,
		"bot_id":       me.UserID,
	}).Info("max-adapter-initialized-successfully")
	return nil
}

func (m *MaxAdapter) api() (*maxapi.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready || m.client == nil {
		return nil, ErrNotInitialized
	}
	return m.client, nil
}

// BotInfo returns the cached identity or fetches it once
func (m *MaxAdapter) BotInfo(ctx context.Context) (*BotInfo, error) {
	client, err := m.api()
	if err != nil {
		return nil, err
	}
	if info, ok := m.cachedBotInfo(); ok {
		return info, nil
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		return nil, &AuthenticationError{Platform: PlatformMax, Message: "/me failed", Err: mapMaxError(err)}
	}
	info := maxBotInfo(me)
	m.storeBotInfo(info)
	return info, nil
}

// SendMessage posts one message; attachments and keyboard travel in the same request
func (m *MaxAdapter) SendMessage(ctx context.Context, chatID string, msg Message) (SendResult, error) {
	client, err := m.api()
	if err != nil {
		return SendResult{}, err
	}

	id, err := parseMaxID(chatID)
	if err != nil {
		return sendFailed(err), nil
	}
	body, err := m.buildBody(msg)
	if err != nil {
		return sendFailed(err), nil
	}

	sent, err := client.SendMessage(ctx, id, body)
	if err != nil {
		mapped := mapMaxError(err)
		if IsRateLimit(mapped) {
			return SendResult{}, mapped
		}
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   mapped,
		}).Error("failed-to-send-message-to-max")
		return sendFailed(mapped), nil
	}

	logger.WithField("chat_id", chatID).Info("message-sent-to-max")
	return sendOK(sent.Body.MID, sent), nil
}

// SendMessageToMultiple sends to every chat sequentially under the rate budget
func (m *MaxAdapter) SendMessageToMultiple(ctx context.Context, chatIDs []string, msg Message) ([]SendResult, error) {
	if err := m.ensureReady(); err != nil {
		return nil, err
	}
	return sendSequential(ctx, PlatformMax, m.Limits(), chatIDs, msg, m.SendMessage), nil
}

func (m *MaxAdapter) buildBody(msg Message) (maxapi.NewMessageBody, error) {
	limits := m.Limits()
	body := maxapi.NewMessageBody{
		Text:   truncateText(PlatformMax, msg.Text, limits.MaxMessageLength),
		Format: maxFormat(msg.Format),
	}
	if msg.ReplyToMessageID != "" {
		body.Link = &maxapi.NewMessageLink{Type: "reply", MID: msg.ReplyToMessageID}
	}

	for _, att := range msg.Attachments {
		converted, err := maxAttachment(att)
		if err != nil {
			return maxapi.NewMessageBody{}, err
		}
		body.Attachments = append(body.Attachments, converted)
	}
	if kb := m.keyboard(msg.Keyboard); kb != nil {
		body.Attachments = append(body.Attachments, maxapi.AttachmentRequest{Type: "inline_keyboard", Payload: kb})
	}

	if body.Text == "" && len(body.Attachments) == 0 {
		return maxapi.NewMessageBody{}, errors.New("message has no text and no attachments")
	}
	return body, nil
}

func maxFormat(format TextFormat) string {
	switch format {
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	}
	return ""
}

func maxAttachment(att Attachment) (maxapi.AttachmentRequest, error) {
	if att.Type == AttachmentLocation {
		lat, lon, ok := att.coordinates()
		if !ok {
			return maxapi.AttachmentRequest{}, errors.New("location attachment requires latitude and longitude metadata")
		}
		return maxapi.AttachmentRequest{Type: "location", Latitude: lat, Longitude: lon}, nil
	}
	if att.URL == "" && att.Token == "" {
		return maxapi.AttachmentRequest{}, fmt.Errorf("%s attachment has neither url nor token", att.Type)
	}

	var kind string
	switch att.Type {
	case AttachmentPhoto:
		kind = "image"
	case AttachmentVideo:
		kind = "video"
	case AttachmentAudio:
		kind = "audio"
	case AttachmentSticker:
		kind = "sticker"
	default:
		kind = "file"
	}

	// Only images may be referenced by URL; other media need an upload token
	if kind != "image" && att.Token == "" {
		return maxapi.AttachmentRequest{}, fmt.Errorf("%s attachment requires an upload token", att.Type)
	}
	return maxapi.AttachmentRequest{
		Type:    kind,
		Payload: maxapi.MediaPayload{URL: att.URL, Token: att.Token},
	}, nil
}

// keyboard converts a unified keyboard. Reply keyboards do not exist on MAX
// and are sent as inline keyboards.
func (m *MaxAdapter) keyboard(kb *Keyboard) *maxapi.Keyboard {
	rows := clampKeyboard(PlatformMax, kb, m.Limits())
	if len(rows) == 0 {
		return nil
	}
	if kb.Type == KeyboardReply {
		logger.Debug("max-reply-keyboard-sent-as-inline")
	}

	out := &maxapi.Keyboard{Buttons: make([][]maxapi.Button, 0, len(rows))}
	for _, row := range rows {
		buttons := make([]maxapi.Button, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, maxButton(b))
		}
		out.Buttons = append(out.Buttons, buttons)
	}
	return out
}

func maxButton(b Button) maxapi.Button {
	switch b.Type {
	case ButtonURL, ButtonApp:
		if b.URL != "" {
			return maxapi.Button{Type: "link", Text: b.Text, URL: b.URL}
		}
	case ButtonContact:
		return maxapi.Button{Type: "request_contact", Text: b.Text}
	case ButtonLocation:
		return maxapi.Button{Type: "request_geo_location", Text: b.Text}
	case ButtonMessage:
		return maxapi.Button{Type: "message", Text: b.Text}
	}
	payload := b.Data
	if payload == "" {
		payload = b.Text
	}
	return maxapi.Button{Type: "callback", Text: b.Text, Payload: payload}
}

func parseMaxID(id string) (int64, error) {
	if !validator.MaxChatID(id) {
		return 0, fmt.Errorf("invalid max chat id %q", id)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid max chat id %q: %w", id, err)
	}
	return n, nil
}

// GetChat looks up a chat
func (m *MaxAdapter) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	client, err := m.api()
	if err != nil {
		return nil, err
	}
	id, err := parseMaxID(chatID)
	if err != nil {
		return nil, &Error{Platform: PlatformMax, Message: err.Error(), Err: err}
	}

	chat, err := client.GetChat(ctx, id)
	if err != nil {
		return nil, mapMaxError(err)
	}
	converted := maxChat(chat)
	return &converted, nil
}

// GetUser looks up a user
func (m *MaxAdapter) GetUser(ctx context.Context, userID string) (*User, error) {
	client, err := m.api()
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, &Error{Platform: PlatformMax, Message: fmt.Sprintf("invalid max user id %q", userID), Err: err}
	}

	user, err := client.GetUser(ctx, id)
	if err != nil {
		return nil, mapMaxError(err)
	}
	return maxUser(user), nil
}

// SetWebhook subscribes the bot to update delivery
func (m *MaxAdapter) SetWebhook(ctx context.Context, opts WebhookOptions) error {
	client, err := m.api()
	if err != nil {
		return err
	}
	if opts.URL == "" {
		return &Error{Platform: PlatformMax, Message: "webhook url is required"}
	}

	err = client.Subscribe(ctx, maxapi.SubscriptionRequest{
		URL:         opts.URL,
		UpdateTypes: opts.AllowedUpdates,
		Secret:      opts.Secret,
	})
	if err != nil {
		return mapMaxError(err)
	}
	logger.WithField("url", opts.URL).Info("max-webhook-set")
	return nil
}

// DeleteWebhook removes every subscription of the bot
func (m *MaxAdapter) DeleteWebhook(ctx context.Context) error {
	client, err := m.api()
	if err != nil {
		return err
	}

	subs, err := client.Subscriptions(ctx)
	if err != nil {
		return mapMaxError(err)
	}
	for _, sub := range subs {
		if err := client.Unsubscribe(ctx, sub.URL); err != nil {
			return mapMaxError(err)
		}
	}
	logger.WithField("removed", len(subs)).Info("max-webhook-deleted")
	return nil
}

// GetWebhookInfo reports the first subscription; lookup failures yield an inactive result
func (m *MaxAdapter) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	client, err := m.api()
	if err != nil {
		return nil, err
	}

	subs, err := client.Subscriptions(ctx)
	if err != nil {
		logger.WithField("error", mapMaxError(err)).Warn("failed-to-get-max-webhook-info")
		return &WebhookInfo{Platform: PlatformMax}, nil
	}
	if len(subs) == 0 {
		return &WebhookInfo{Platform: PlatformMax}, nil
	}
	return &WebhookInfo{
		URL:      subs[0].URL,
		IsActive: true,
		Platform: PlatformMax,
	}, nil
}

// ProcessWebhookUpdate normalizes a MAX update payload. The update id is the
// event timestamp since MAX has no separate update counter.
func (m *MaxAdapter) ProcessWebhookUpdate(raw []byte) Update {
	var upd maxapi.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		logger.WithField("error", err).Debug("unparseable-max-update")
		return unrecognizedUpdate(PlatformMax, "", raw)
	}

	out := Update{
		ID:       strconv.FormatInt(upd.Timestamp, 10),
		Platform: PlatformMax,
		Event:    MessageEvent{},
		Raw:      copyRaw(raw),
	}

	switch upd.UpdateType {
	case maxapi.UpdateMessageCreated, maxapi.UpdateMessageEdited:
		if upd.Message != nil {
			out.Event = MessageEvent{Message: maxIncoming(upd.Message)}
		}
	case maxapi.UpdateMessageCallback:
		if upd.Callback != nil {
			query := CallbackQuery{
				ID:   upd.Callback.CallbackID,
				Data: upd.Callback.Payload,
				From: *maxUser(&upd.Callback.User),
			}
			if upd.Message != nil {
				query.Message = maxIncoming(upd.Message)
			}
			out.Event = CallbackQueryEvent{Query: query}
		}
	case maxapi.UpdateBotStarted:
		if upd.User != nil {
			out.Event = BotStartedEvent{
				Chat:    Chat{ID: strconv.FormatInt(upd.ChatID, 10), Type: ChatPrivate, Platform: PlatformMax},
				User:    *maxUser(upd.User),
				Payload: upd.Payload,
			}
		}
	case maxapi.UpdateBotAdded:
		out.Event = BotAddedEvent{Chat: maxMembershipChat(upd), User: maxUser(upd.User)}
	case maxapi.UpdateBotRemoved:
		out.Event = BotRemovedEvent{Chat: maxMembershipChat(upd), User: maxUser(upd.User)}
	}
	return out
}

func maxMembershipChat(upd maxapi.Update) Chat {
	chatType := ChatGroup
	if upd.IsChannel {
		chatType = ChatChannel
	}
	return Chat{ID: strconv.FormatInt(upd.ChatID, 10), Type: chatType, Platform: PlatformMax}
}

func maxIncoming(msg *maxapi.Message) *IncomingMessage {
	out := &IncomingMessage{
		ID:   msg.Body.MID,
		Chat: Chat{ID: strconv.FormatInt(msg.Recipient.ChatID, 10), Type: maxChatType(msg.Recipient.ChatType), Platform: PlatformMax},
		From: maxUser(msg.Sender),
		Text: msg.Body.Text,
		Date: time.UnixMilli(msg.Timestamp).UTC(),
	}
	if msg.Link != nil && msg.Link.Type == "reply" {
		out.ReplyToMessageID = msg.Link.Message.MID
	}
	return out
}

func maxChatType(t string) ChatType {
	switch t {
	case maxapi.ChatDialog:
		return ChatPrivate
	case maxapi.ChatChannel:
		return ChatChannel
	}
	return ChatGroup
}

func maxChat(c *maxapi.Chat) Chat {
	return Chat{
		ID:       strconv.FormatInt(c.ChatID, 10),
		Type:     maxChatType(c.Type),
		Title:    c.Title,
		Platform: PlatformMax,
	}
}

func maxUser(u *maxapi.User) *User {
	if u == nil {
		return nil
	}
	first := u.FirstName
	if first == "" {
		first = u.Name
	}
	return &User{
		ID:        strconv.FormatInt(u.UserID, 10),
		Username:  u.Username,
		FirstName: first,
		LastName:  u.LastName,
		Platform:  PlatformMax,
	}
}

func maxBotInfo(u *maxapi.User) *BotInfo {
	first := u.FirstName
	if first == "" {
		first = u.Name
	}
	return &BotInfo{
		ID:        strconv.FormatInt(u.UserID, 10),
		Username:  u.Username,
		FirstName: first,
		Platform:  PlatformMax,
		IsActive:  true,
	}
}

// ValidateToken checks the MAX token grammar
func (m *MaxAdapter) ValidateToken(token string) bool {
	return validator.MaxToken(token)
}

// ValidateChatID accepts a positive integer
func (m *MaxAdapter) ValidateChatID(chatID string) bool {
	return validator.MaxChatID(chatID)
}

// FormatText returns text unchanged; MAX parses markup server side
func (m *MaxAdapter) FormatText(text string, format TextFormat) string {
	return text
}

// Limits returns MAX's static limits
func (m *MaxAdapter) Limits() Limits {
	return Limits{
		MaxMessageLength:   constants.MaxMaxMessageLength,
		MaxCaptionLength:   constants.MaxMaxMessageLength,
		MaxButtonsPerRow:   constants.MaxMaxButtonsPerRow,
		MaxButtonRows:      constants.MaxMaxButtonRows,
		RateLimitPerSecond: constants.MaxRateLimitPerSecond,
		RateLimitPerMinute: constants.MaxRateLimitPerMinute,
	}
}

// CheckBotPermissions maps the bot's membership flags. Dialogs get full
// permissions; a failed chat lookup falls back to the membership check.
func (m *MaxAdapter) CheckBotPermissions(ctx context.Context, chatID string) Permissions {
	client, err := m.api()
	if err != nil {
		return Permissions{}
	}
	id, err := parseMaxID(chatID)
	if err != nil {
		return Permissions{}
	}

	if chat, err := client.GetChat(ctx, id); err == nil && chat.Type == maxapi.ChatDialog {
		return FullPermissions()
	}

	member, err := client.GetMembership(ctx, id)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"error":   mapMaxError(err),
		}).Warn("failed-to-check-max-bot-permissions")
		return Permissions{}
	}
	return maxPermissions(member)
}

func maxPermissions(member *maxapi.ChatMember) Permissions {
	if member.IsOwner {
		return FullPermissions()
	}
	if !member.IsAdmin {
		return Permissions{CanSendMessages: true}
	}

	perms := Permissions{IsAdmin: true, CanEditMessages: true, CanDeleteMessages: true}
	for _, p := range member.Permissions {
		switch p {
		case maxapi.PermissionWrite:
			perms.CanSendMessages = true
		case maxapi.PermissionPinMessage:
			perms.CanPinMessages = true
		case maxapi.PermissionChangeChatInfo, maxapi.PermissionAddRemove:
			perms.CanManageChat = true
		}
	}
	return perms
}

// Dispose drops the client, credentials and cached identity
func (m *MaxAdapter) Dispose() {
	m.mu.Lock()
	m.client = nil
	m.resetLocked()
	m.mu.Unlock()

	logger.Info("max-adapter-disposed")
}

// mapMaxError converts client errors into the error taxonomy
func mapMaxError(err error) error {
	var apiErr *maxapi.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimit():
			return &RateLimitError{Platform: PlatformMax, RetryAfter: apiErr.RetryAfter, Message: apiErr.Message}
		case apiErr.IsUnauthorized():
			return &AuthenticationError{Platform: PlatformMax, Message: apiErr.Message}
		}
		return &Error{
			Platform:   PlatformMax,
			Code:       apiErr.StatusCode,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &Error{Platform: PlatformMax, Message: err.Error(), Err: err}
}

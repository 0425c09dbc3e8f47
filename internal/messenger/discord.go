package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/internal/validator"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

var discordMarkdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "~", `\~`, "`", "\\`", "|", `\|`, ">", `\>`,
)

// DiscordSession defines the REST calls we need from discordgo.Session.
// This allows us to mock it in tests without a live gateway.
type DiscordSession interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// DiscordSessionFactory opens a REST session for a bot token
type DiscordSessionFactory func(token string) (DiscordSession, error)

// NewDiscordSession creates a discordgo REST session. Rate limits are reported
// to the caller instead of being retried inside discordgo.
func NewDiscordSession(timeout time.Duration) DiscordSessionFactory {
	return func(token string) (DiscordSession, error) {
		session, err := discordgo.New("Bot " + token)
		if err != nil {
			return nil, fmt.Errorf("failed to create discord session: %w", err)
		}
		session.Client = &http.Client{Timeout: timeout}
		session.ShouldRetryOnRateLimit = false
		return session, nil
	}
}

// DiscordAdapter implements Adapter for Discord channels over REST
type DiscordAdapter struct {
	lifecycle
	newSession DiscordSessionFactory
	session    DiscordSession
}

// NewDiscordAdapter creates an uninitialized Discord adapter. A nil factory
// uses discordgo with the default request timeout.
func NewDiscordAdapter(factory DiscordSessionFactory) *DiscordAdapter {
	if factory == nil {
		factory = NewDiscordSession(constants.DefaultRequestTimeout)
	}
	d := &DiscordAdapter{newSession: factory}
	d.platform = PlatformDiscord
	return d
}

// Platform returns PlatformDiscord
func (d *DiscordAdapter) Platform() Platform { return PlatformDiscord }

// Initialize checks the token format, fetches @me and caches the bot identity
func (d *DiscordAdapter) Initialize(ctx context.Context, creds Credentials) error {
	if !d.ValidateToken(creds.Token) {
		return &AuthenticationError{
			Platform: PlatformDiscord,
			Message:  "token rejected before any request",
			Err:      &InvalidTokenError{Platform: PlatformDiscord},
		}
	}

	logger.WithFields(logrus.Fields{
		"token": maskSecret(creds.Token),
	}).Info("initializing-discord-adapter")

	session, err := d.newSession(creds.Token)
	if err != nil {
		return &AuthenticationError{Platform: PlatformDiscord, Message: "session setup failed", Err: err}
	}
	me, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		logger.WithField("error", err).Error("failed-to-initialize-discord-adapter")
		return &AuthenticationError{
			Platform: PlatformDiscord,
			Message:  "@me readiness check failed",
			Err:      mapDiscordError(err),
		}
	}

	d.mu.Lock()
	d.session = session
	d.creds = creds.clone()
	d.botInfo = discordBotInfo(me)
	d.ready = true
	d.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"bot_username": me.Username,
		"bot_id":       me.ID,
	}).Info("discord-adapter-initialized-successfully")
	return nil
}

func (d *DiscordAdapter) api() (DiscordSession, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.ready || d.session == nil {
		return nil, ErrNotInitialized
	}
	return d.session, nil
}

// BotInfo returns the cached identity or fetches it once
func (d *DiscordAdapter) BotInfo(ctx context.Context) (*BotInfo, error) {
	session, err := d.api()
	if err != nil {
		return nil, err
	}
	if info, ok := d.cachedBotInfo(); ok {
		return info, nil
	}

	me, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, &AuthenticationError{Platform: PlatformDiscord, Message: "@me failed", Err: mapDiscordError(err)}
	}
	info := discordBotInfo(me)
	d.storeBotInfo(info)
	return info, nil
}

// SendMessage posts one message to a channel
func (d *DiscordAdapter) SendMessage(ctx context.Context, chatID string, msg Message) (SendResult, error) {
	session, err := d.api()
	if err != nil {
		return SendResult{}, err
	}
	if !d.ValidateChatID(chatID) {
		return sendFailed(fmt.Errorf("invalid discord channel id %q", chatID)), nil
	}

	data, err := d.buildMessage(chatID, msg)
	if err != nil {
		return sendFailed(err), nil
	}

	sent, err := session.ChannelMessageSendComplex(chatID, data, discordgo.WithContext(ctx))
	if err != nil {
		mapped := mapDiscordError(err)
		if IsRateLimit(mapped) {
			return SendResult{}, mapped
		}
		logger.WithFields(logrus.Fields{
			"channel": chatID,
			"error":   mapped,
		}).Error("failed-to-send-message-to-discord")
		return sendFailed(mapped), nil
	}

	logger.WithField("channel", chatID).Info("message-sent-to-discord")
	return sendOK(sent.ID, sent), nil
}

// SendMessageToMultiple sends to every channel sequentially under the rate budget
func (d *DiscordAdapter) SendMessageToMultiple(ctx context.Context, chatIDs []string, msg Message) ([]SendResult, error) {
	if err := d.ensureReady(); err != nil {
		return nil, err
	}
	return sendSequential(ctx, PlatformDiscord, d.Limits(), chatIDs, msg, d.SendMessage), nil
}

func (d *DiscordAdapter) buildMessage(chatID string, msg Message) (*discordgo.MessageSend, error) {
	limits := d.Limits()
	lines := []string{}
	if msg.Text != "" {
		lines = append(lines, msg.Text)
	}

	data := &discordgo.MessageSend{}
	for _, att := range msg.Attachments {
		switch {
		case att.Type == AttachmentLocation:
			lat, lon, ok := att.coordinates()
			if !ok {
				return nil, errors.New("location attachment requires latitude and longitude metadata")
			}
			data.Embeds = append(data.Embeds, &discordgo.MessageEmbed{
				Title:       "Location",
				Description: fmt.Sprintf("%.6f, %.6f", lat, lon),
			})
		case att.URL == "":
			return nil, fmt.Errorf("%s attachment must be referenced by url on discord", att.Type)
		case att.Type == AttachmentPhoto:
			data.Embeds = append(data.Embeds, &discordgo.MessageEmbed{
				Description: att.Caption,
				Image:       &discordgo.MessageEmbedImage{URL: att.URL},
			})
		default:
			// Discord unfurls plain links for other media
			lines = append(lines, strings.TrimSpace(att.Caption+" "+att.URL))
		}
	}

	data.Content = truncateText(PlatformDiscord, strings.Join(lines, "\n"), limits.MaxMessageLength)
	if data.Content == "" && len(data.Embeds) == 0 {
		return nil, errors.New("message has no text and no attachments")
	}

	data.Components = d.components(msg.Keyboard)
	if msg.ReplyToMessageID != "" {
		data.Reference = &discordgo.MessageReference{MessageID: msg.ReplyToMessageID, ChannelID: chatID}
	}
	return data, nil
}

// components converts a keyboard into action rows of buttons
func (d *DiscordAdapter) components(kb *Keyboard) []discordgo.MessageComponent {
	rows := clampKeyboard(PlatformDiscord, kb, d.Limits())
	if len(rows) == 0 {
		return nil
	}

	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, discordButton(b))
		}
		out = append(out, discordgo.ActionsRow{Components: buttons})
	}
	return out
}

func discordButton(b Button) discordgo.Button {
	if (b.Type == ButtonURL || b.Type == ButtonApp) && b.URL != "" {
		return discordgo.Button{Label: b.Text, Style: discordgo.LinkButton, URL: b.URL}
	}
	id := b.Data
	if id == "" {
		id = b.Text
	}
	return discordgo.Button{Label: b.Text, Style: discordgo.PrimaryButton, CustomID: id}
}

// GetChat looks up a channel
func (d *DiscordAdapter) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	session, err := d.api()
	if err != nil {
		return nil, err
	}

	ch, err := session.Channel(chatID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapDiscordError(err)
	}
	chat := discordChat(ch)
	return &chat, nil
}

// GetUser looks up a user
func (d *DiscordAdapter) GetUser(ctx context.Context, userID string) (*User, error) {
	session, err := d.api()
	if err != nil {
		return nil, err
	}

	u, err := session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapDiscordError(err)
	}
	return discordUser(u), nil
}

// SetWebhook is configured in the Discord developer portal, not through the bot token
func (d *DiscordAdapter) SetWebhook(ctx context.Context, opts WebhookOptions) error {
	if err := d.ensureReady(); err != nil {
		return err
	}
	return &UnsupportedOperationError{Platform: PlatformDiscord, Operation: "webhook registration"}
}

// DeleteWebhook is configured in the Discord developer portal, not through the bot token
func (d *DiscordAdapter) DeleteWebhook(ctx context.Context) error {
	if err := d.ensureReady(); err != nil {
		return err
	}
	return &UnsupportedOperationError{Platform: PlatformDiscord, Operation: "webhook removal"}
}

// GetWebhookInfo always reports an inactive webhook
func (d *DiscordAdapter) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	if err := d.ensureReady(); err != nil {
		return nil, err
	}
	return &WebhookInfo{Platform: PlatformDiscord}, nil
}

// ProcessWebhookUpdate normalizes an interaction payload. Button presses
// become callback queries and slash commands become messages.
func (d *DiscordAdapter) ProcessWebhookUpdate(raw []byte) Update {
	var in discordgo.Interaction
	if err := json.Unmarshal(raw, &in); err != nil {
		logger.WithField("error", err).Debug("unparseable-discord-interaction")
		return unrecognizedUpdate(PlatformDiscord, "", raw)
	}

	out := Update{
		ID:       in.ID,
		Platform: PlatformDiscord,
		Event:    MessageEvent{},
		Raw:      copyRaw(raw),
	}

	from := discordInteractionUser(&in)
	switch data := in.Data.(type) {
	case discordgo.MessageComponentInteractionData:
		query := CallbackQuery{ID: in.ID, Data: data.CustomID, From: User{Platform: PlatformDiscord}}
		if from != nil {
			query.From = *from
		}
		if in.Message != nil {
			query.Message = discordIncoming(in.Message, in.GuildID)
		}
		out.Event = CallbackQueryEvent{Query: query}
	case discordgo.ApplicationCommandInteractionData:
		msg := &IncomingMessage{
			ID:   in.ID,
			Chat: Chat{ID: in.ChannelID, Type: discordChatTypeFor(in.GuildID), Platform: PlatformDiscord},
			From: from,
			Text: "/" + data.Name,
		}
		if ts, err := discordgo.SnowflakeTimestamp(in.ID); err == nil {
			msg.Date = ts.UTC()
		}
		out.Event = MessageEvent{Message: msg}
	}
	return out
}

func discordInteractionUser(in *discordgo.Interaction) *User {
	if in.Member != nil && in.Member.User != nil {
		return discordUser(in.Member.User)
	}
	return discordUser(in.User)
}

func discordIncoming(m *discordgo.Message, guildID string) *IncomingMessage {
	out := &IncomingMessage{
		ID:   m.ID,
		Chat: Chat{ID: m.ChannelID, Type: discordChatTypeFor(guildID), Platform: PlatformDiscord},
		From: discordUser(m.Author),
		Text: m.Content,
		Date: m.Timestamp.UTC(),
	}
	if m.MessageReference != nil {
		out.ReplyToMessageID = m.MessageReference.MessageID
	}
	return out
}

func discordChatTypeFor(guildID string) ChatType {
	if guildID == "" {
		return ChatPrivate
	}
	return ChatGroup
}

func discordChat(ch *discordgo.Channel) Chat {
	chatType := ChatGroup
	switch ch.Type {
	case discordgo.ChannelTypeDM:
		chatType = ChatPrivate
	case discordgo.ChannelTypeGuildNews:
		chatType = ChatChannel
	}
	return Chat{ID: ch.ID, Type: chatType, Title: ch.Name, Platform: PlatformDiscord}
}

func discordUser(u *discordgo.User) *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Username: u.Username, Platform: PlatformDiscord}
}

func discordBotInfo(u *discordgo.User) *BotInfo {
	return &BotInfo{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.Username,
		Platform:  PlatformDiscord,
		IsActive:  true,
	}
}

// ValidateToken checks the three segment bot token grammar
func (d *DiscordAdapter) ValidateToken(token string) bool {
	return validator.DiscordToken(token)
}

// ValidateChatID accepts a channel snowflake
func (d *DiscordAdapter) ValidateChatID(chatID string) bool {
	return validator.DiscordChatID(chatID)
}

// FormatText escapes Discord markdown; other formats pass through
func (d *DiscordAdapter) FormatText(text string, format TextFormat) string {
	if format == FormatMarkdown {
		return discordMarkdownEscaper.Replace(text)
	}
	return text
}

// Limits returns Discord's static limits
func (d *DiscordAdapter) Limits() Limits {
	return Limits{
		MaxMessageLength:   constants.MaxDiscordMessageLength,
		MaxCaptionLength:   constants.MaxDiscordMessageLength,
		MaxButtonsPerRow:   constants.MaxDiscordButtonsPerRow,
		MaxButtonRows:      constants.MaxDiscordButtonRows,
		RateLimitPerSecond: constants.DiscordRateLimitPerSecond,
		RateLimitPerMinute: constants.DiscordRateLimitPerMinute,
	}
}

// CheckBotPermissions resolves the bot's channel permission bits. DM channels
// get full permissions; a failed channel lookup falls back to the bit check.
func (d *DiscordAdapter) CheckBotPermissions(ctx context.Context, chatID string) Permissions {
	session, err := d.api()
	if err != nil {
		return Permissions{}
	}
	botID := d.botID()
	if botID == "" || !d.ValidateChatID(chatID) {
		return Permissions{}
	}

	if ch, err := session.Channel(chatID, discordgo.WithContext(ctx)); err == nil && ch.Type == discordgo.ChannelTypeDM {
		return FullPermissions()
	}

	bits, err := session.UserChannelPermissions(botID, chatID, discordgo.WithContext(ctx))
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel": chatID,
			"error":   mapDiscordError(err),
		}).Warn("failed-to-check-discord-bot-permissions")
		return Permissions{}
	}
	return discordPermissions(bits)
}

func discordPermissions(bits int64) Permissions {
	if bits&discordgo.PermissionAdministrator != 0 {
		return FullPermissions()
	}
	manage := bits&discordgo.PermissionManageMessages != 0
	return Permissions{
		CanSendMessages:   bits&discordgo.PermissionSendMessages != 0,
		CanEditMessages:   manage,
		CanDeleteMessages: manage,
		CanPinMessages:    manage,
		CanManageChat:     bits&discordgo.PermissionManageChannels != 0,
	}
}

// Dispose drops the session, credentials and cached identity
func (d *DiscordAdapter) Dispose() {
	d.mu.Lock()
	d.session = nil
	d.resetLocked()
	d.mu.Unlock()

	logger.Info("discord-adapter-disposed")
}

// mapDiscordError converts discordgo errors into the error taxonomy
func mapDiscordError(err error) error {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) && rl.RateLimit != nil && rl.TooManyRequests != nil {
		return &RateLimitError{Platform: PlatformDiscord, RetryAfter: rl.RetryAfter, Message: rl.Message}
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		status := restErr.Response.StatusCode
		msg := http.StatusText(status)
		code := status
		if restErr.Message != nil {
			msg = restErr.Message.Message
			code = restErr.Message.Code
		}
		switch status {
		case http.StatusUnauthorized:
			return &AuthenticationError{Platform: PlatformDiscord, Message: msg}
		case http.StatusTooManyRequests:
			return &RateLimitError{Platform: PlatformDiscord, Message: msg}
		}
		return &Error{Platform: PlatformDiscord, Code: code, StatusCode: status, Message: msg, Err: err}
	}
	return &Error{Platform: PlatformDiscord, Message: err.Error(), Err: err}
}

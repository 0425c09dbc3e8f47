package messenger

// Platform identifies a messenger platform
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformMax      Platform = "max"
	PlatformDiscord  Platform = "discord"
)

// Credentials are the secrets an adapter needs to talk to its platform
type Credentials struct {
	Token          string
	Platform       Platform
	AdditionalData map[string]string
}

// clone returns a deep copy so callers cannot mutate stored credentials
func (c Credentials) clone() Credentials {
	out := c
	if c.AdditionalData != nil {
		out.AdditionalData = make(map[string]string, len(c.AdditionalData))
		for k, v := range c.AdditionalData {
			out.AdditionalData[k] = v
		}
	}
	return out
}

// TextFormat selects how message text is interpreted by the platform
type TextFormat string

const (
	FormatPlain    TextFormat = "plain"
	FormatMarkdown TextFormat = "markdown"
	FormatHTML     TextFormat = "html"
)

// AttachmentType is the kind of media attached to a message
type AttachmentType string

const (
	AttachmentPhoto    AttachmentType = "photo"
	AttachmentVideo    AttachmentType = "video"
	AttachmentAudio    AttachmentType = "audio"
	AttachmentDocument AttachmentType = "document"
	AttachmentSticker  AttachmentType = "sticker"
	AttachmentLocation AttachmentType = "location"
)

// Attachment is a media item referenced either by URL or by a platform token.
// Locations carry "latitude" and "longitude" in Metadata.
type Attachment struct {
	Type     AttachmentType `json:"type"`
	URL      string         `json:"url,omitempty"`
	Token    string         `json:"token,omitempty"`
	Caption  string         `json:"caption,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// coordinates extracts latitude/longitude from location metadata
func (a Attachment) coordinates() (lat, lon float64, ok bool) {
	lat, okLat := toFloat(a.Metadata["latitude"])
	lon, okLon := toFloat(a.Metadata["longitude"])
	return lat, lon, okLat && okLon
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// KeyboardType distinguishes message-attached buttons from reply keyboards
type KeyboardType string

const (
	KeyboardInline KeyboardType = "inline"
	KeyboardReply  KeyboardType = "reply"
)

// ButtonType is the action a button performs
type ButtonType string

const (
	ButtonCallback ButtonType = "callback"
	ButtonURL      ButtonType = "url"
	ButtonContact  ButtonType = "contact"
	ButtonLocation ButtonType = "location"
	ButtonApp      ButtonType = "app"
	ButtonMessage  ButtonType = "message"
)

// Button is one keyboard button. Callback buttons use Data, url and app
// buttons use URL.
type Button struct {
	Text string     `json:"text"`
	Type ButtonType `json:"type"`
	Data string     `json:"data,omitempty"`
	URL  string     `json:"url,omitempty"`
}

// Keyboard is a row-major grid of buttons
type Keyboard struct {
	Type    KeyboardType `json:"type"`
	Buttons [][]Button   `json:"buttons"`
}

// Message is the platform independent outgoing message
type Message struct {
	Text             string       `json:"text"`
	Format           TextFormat   `json:"format,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	Keyboard         *Keyboard    `json:"keyboard,omitempty"`
	ReplyToMessageID string       `json:"reply_to_message_id,omitempty"`
}

// ChatType is the normalized kind of conversation
type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// Chat is a read-only projection of platform chat state
type Chat struct {
	ID       string   `json:"id"`
	Type     ChatType `json:"type"`
	Title    string   `json:"title,omitempty"`
	Username string   `json:"username,omitempty"`
	Platform Platform `json:"platform"`
}

// User is a platform user
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username,omitempty"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Platform  Platform `json:"platform"`
}

// SendResult is the outcome of one send. A failed result never carries a
// MessageID and always carries Error.
type SendResult struct {
	Success          bool   `json:"success"`
	MessageID        string `json:"message_id,omitempty"`
	Error            string `json:"error,omitempty"`
	PlatformSpecific any    `json:"platform_specific,omitempty"`
}

func sendOK(messageID string, raw any) SendResult {
	return SendResult{Success: true, MessageID: messageID, PlatformSpecific: raw}
}

func sendFailed(err error) SendResult {
	return SendResult{Success: false, Error: err.Error()}
}

// BotInfo describes the bot identity behind an adapter
type BotInfo struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	Platform  Platform `json:"platform"`
	IsActive  bool     `json:"is_active"`
}

// WebhookOptions configures update delivery
type WebhookOptions struct {
	URL                string
	MaxConnections     int
	AllowedUpdates     []string
	Secret             string
	DropPendingUpdates bool
}

// WebhookInfo is the current webhook registration
type WebhookInfo struct {
	URL            string   `json:"url,omitempty"`
	IsActive       bool     `json:"is_active"`
	MaxConnections int      `json:"max_connections,omitempty"`
	PendingUpdates int      `json:"pending_updates,omitempty"`
	LastError      string   `json:"last_error,omitempty"`
	Platform       Platform `json:"platform"`
}

// Permissions are the bot's capabilities in a chat
type Permissions struct {
	CanSendMessages   bool `json:"can_send_messages"`
	CanEditMessages   bool `json:"can_edit_messages"`
	CanDeleteMessages bool `json:"can_delete_messages"`
	CanPinMessages    bool `json:"can_pin_messages"`
	CanManageChat     bool `json:"can_manage_chat"`
	IsAdmin           bool `json:"is_admin"`
}

// FullPermissions is what a bot may do in a private conversation
func FullPermissions() Permissions {
	return Permissions{
		CanSendMessages:   true,
		CanEditMessages:   true,
		CanDeleteMessages: true,
		CanPinMessages:    true,
		CanManageChat:     true,
		IsAdmin:           true,
	}
}

// Limits are the static platform constraints used for truncation and pacing
type Limits struct {
	MaxMessageLength   int `json:"max_message_length"`
	MaxCaptionLength   int `json:"max_caption_length"`
	MaxButtonsPerRow   int `json:"max_buttons_per_row"`
	MaxButtonRows      int `json:"max_button_rows"`
	RateLimitPerSecond int `json:"rate_limit_per_second"`
	RateLimitPerMinute int `json:"rate_limit_per_minute"`
}

package maxapi

import "encoding/json"

// Update types delivered by the MAX platform
const (
	UpdateMessageCreated  = "message_created"
	UpdateMessageEdited   = "message_edited"
	UpdateMessageCallback = "message_callback"
	UpdateBotStarted      = "bot_started"
	UpdateBotAdded        = "bot_added"
	UpdateBotRemoved      = "bot_removed"
)

// Chat types reported by GET /chats/{id}
const (
	ChatDialog  = "dialog"
	ChatChat    = "chat"
	ChatChannel = "channel"
)

// Chat member permission names
const (
	PermissionWrite          = "write"
	PermissionPinMessage     = "pin_message"
	PermissionChangeChatInfo = "change_chat_info"
	PermissionAddRemove      = "add_remove_members"
	PermissionReadAll        = "read_all_messages"
)

// User is a MAX user or bot
type User struct {
	UserID    int64  `json:"user_id"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat is a MAX conversation
type Chat struct {
	ChatID            int64  `json:"chat_id"`
	Type              string `json:"type"`
	Status            string `json:"status,omitempty"`
	Title             string `json:"title,omitempty"`
	Link              string `json:"link,omitempty"`
	ParticipantsCount int    `json:"participants_count,omitempty"`
	IsPublic          bool   `json:"is_public,omitempty"`
}

// ChatMember is the bot's membership in a chat
type ChatMember struct {
	User
	IsOwner     bool     `json:"is_owner"`
	IsAdmin     bool     `json:"is_admin"`
	Permissions []string `json:"permissions,omitempty"`
}

// Button is one inline keyboard button
type Button struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Keyboard is the payload of an inline_keyboard attachment
type Keyboard struct {
	Buttons [][]Button `json:"buttons"`
}

// MediaPayload references uploaded media by token or remote media by URL
type MediaPayload struct {
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`
}

// AttachmentRequest is an outgoing attachment
type AttachmentRequest struct {
	Type      string  `json:"type"`
	Payload   any     `json:"payload,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// NewMessageLink references the message being replied to
type NewMessageLink struct {
	Type string `json:"type"`
	MID  string `json:"mid"`
}

// NewMessageBody is the body of POST /messages
type NewMessageBody struct {
	Text        string              `json:"text,omitempty"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
	Link        *NewMessageLink     `json:"link,omitempty"`
	Format      string              `json:"format,omitempty"`
}

// Recipient is where a message was delivered
type Recipient struct {
	ChatID   int64  `json:"chat_id,omitempty"`
	ChatType string `json:"chat_type,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
}

// MessageBody is the content of a delivered message
type MessageBody struct {
	MID         string            `json:"mid"`
	Seq         int64             `json:"seq,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []json.RawMessage `json:"attachments,omitempty"`
}

// LinkedMessage is a reply or forward reference on a delivered message
type LinkedMessage struct {
	Type    string      `json:"type"`
	Sender  *User       `json:"sender,omitempty"`
	ChatID  int64       `json:"chat_id,omitempty"`
	Message MessageBody `json:"message"`
}

// Message is a delivered message
type Message struct {
	Sender    *User          `json:"sender,omitempty"`
	Recipient Recipient      `json:"recipient"`
	Timestamp int64          `json:"timestamp"`
	Link      *LinkedMessage `json:"link,omitempty"`
	Body      MessageBody    `json:"body"`
}

// Callback is a button press
type Callback struct {
	Timestamp  int64  `json:"timestamp"`
	CallbackID string `json:"callback_id"`
	Payload    string `json:"payload,omitempty"`
	User       User   `json:"user"`
}

// Update is one webhook delivery. Which fields are set depends on UpdateType.
type Update struct {
	UpdateType string    `json:"update_type"`
	Timestamp  int64     `json:"timestamp"`
	Message    *Message  `json:"message,omitempty"`
	Callback   *Callback `json:"callback,omitempty"`
	ChatID     int64     `json:"chat_id,omitempty"`
	User       *User     `json:"user,omitempty"`
	Payload    string    `json:"payload,omitempty"`
	IsChannel  bool      `json:"is_channel,omitempty"`
}

// Subscription is a registered webhook
type Subscription struct {
	URL         string   `json:"url"`
	Time        int64    `json:"time,omitempty"`
	UpdateTypes []string `json:"update_types,omitempty"`
	Version     string   `json:"version,omitempty"`
}

// SubscriptionRequest is the body of POST /subscriptions
type SubscriptionRequest struct {
	URL         string   `json:"url"`
	UpdateTypes []string `json:"update_types,omitempty"`
	Secret      string   `json:"secret,omitempty"`
}

// SimpleResult is the generic success envelope
type SimpleResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type sendMessageResult struct {
	Message Message `json:"message"`
}

type subscriptionsResult struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

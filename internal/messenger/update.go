package messenger

import (
	"encoding/json"
	"time"
)

// UpdateType is the discriminator of an inbound update
type UpdateType string

const (
	UpdateMessage       UpdateType = "message"
	UpdateCallbackQuery UpdateType = "callback_query"
	UpdateBotStarted    UpdateType = "bot_started"
	UpdateBotAdded      UpdateType = "bot_added"
	UpdateBotRemoved    UpdateType = "bot_removed"
)

// Event is the payload of an Update. The set of implementations is closed:
// MessageEvent, CallbackQueryEvent, BotStartedEvent, BotAddedEvent and
// BotRemovedEvent. Consumers switch on the concrete type.
type Event interface {
	updateType() UpdateType
}

// IncomingMessage is a message received from a platform
type IncomingMessage struct {
	ID               string    `json:"id"`
	Chat             Chat      `json:"chat"`
	From             *User     `json:"from,omitempty"`
	Text             string    `json:"text,omitempty"`
	ReplyToMessageID string    `json:"reply_to_message_id,omitempty"`
	Date             time.Time `json:"date"`
}

// CallbackQuery is a button press
type CallbackQuery struct {
	ID      string           `json:"id"`
	From    User             `json:"from"`
	Data    string           `json:"data,omitempty"`
	Message *IncomingMessage `json:"message,omitempty"`
}

// MessageEvent carries a new or edited message. Message is nil when the
// payload could not be recognized; the raw payload is still on the Update.
type MessageEvent struct {
	Message *IncomingMessage
}

// CallbackQueryEvent carries a button press
type CallbackQueryEvent struct {
	Query CallbackQuery
}

// BotStartedEvent is emitted when a user opens a conversation with the bot
type BotStartedEvent struct {
	Chat    Chat
	User    User
	Payload string
}

// BotAddedEvent is emitted when the bot joins a chat
type BotAddedEvent struct {
	Chat Chat
	User *User
}

// BotRemovedEvent is emitted when the bot leaves or is kicked from a chat
type BotRemovedEvent struct {
	Chat Chat
	User *User
}

func (MessageEvent) updateType() UpdateType       { return UpdateMessage }
func (CallbackQueryEvent) updateType() UpdateType { return UpdateCallbackQuery }
func (BotStartedEvent) updateType() UpdateType    { return UpdateBotStarted }
func (BotAddedEvent) updateType() UpdateType      { return UpdateBotAdded }
func (BotRemovedEvent) updateType() UpdateType    { return UpdateBotRemoved }

// Update is one normalized inbound platform event
type Update struct {
	ID       string
	Platform Platform
	Event    Event
	// Raw is the untouched payload as received
	Raw json.RawMessage
}

// Type returns the discriminator of the carried event
func (u Update) Type() UpdateType {
	if u.Event == nil {
		return UpdateMessage
	}
	return u.Event.updateType()
}

// Recognized reports whether the payload mapped to a known event shape
func (u Update) Recognized() bool {
	if m, ok := u.Event.(MessageEvent); ok {
		return m.Message != nil
	}
	return u.Event != nil
}

// unrecognizedUpdate is the best-effort result for payloads we cannot map
func unrecognizedUpdate(platform Platform, id string, raw []byte) Update {
	return Update{
		ID:       id,
		Platform: platform,
		Event:    MessageEvent{},
		Raw:      copyRaw(raw),
	}
}

func copyRaw(raw []byte) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

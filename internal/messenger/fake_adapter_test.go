package messenger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakeAdapter is an in-memory Adapter used by registry and manager tests
type fakeAdapter struct {
	lifecycle
	initErr  error
	sendErr  error
	failFor  map[string]bool
	disposed atomic.Int32

	sentMu sync.Mutex
	sent   []string
}

func newFakeAdapter(p Platform) *fakeAdapter {
	f := &fakeAdapter{}
	f.platform = p
	return f
}

func (f *fakeAdapter) Platform() Platform { return f.platform }

func (f *fakeAdapter) Initialize(ctx context.Context, creds Credentials) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.mu.Lock()
	f.ready = true
	f.creds = creds.clone()
	f.botInfo = &BotInfo{ID: "1", Username: "fake_" + string(f.platform), Platform: f.platform, IsActive: true}
	f.mu.Unlock()
	return nil
}

func (f *fakeAdapter) BotInfo(ctx context.Context) (*BotInfo, error) {
	if err := f.ensureReady(); err != nil {
		return nil, err
	}
	info, _ := f.cachedBotInfo()
	return info, nil
}

func (f *fakeAdapter) SendMessage(ctx context.Context, chatID string, msg Message) (SendResult, error) {
	if err := f.ensureReady(); err != nil {
		return SendResult{}, err
	}
	f.sentMu.Lock()
	f.sent = append(f.sent, chatID)
	f.sentMu.Unlock()

	if f.sendErr != nil {
		return SendResult{}, f.sendErr
	}
	if f.failFor[chatID] {
		return sendFailed(errors.New("chat not found")), nil
	}
	return sendOK("m-"+chatID, nil), nil
}

func (f *fakeAdapter) SendMessageToMultiple(ctx context.Context, chatIDs []string, msg Message) ([]SendResult, error) {
	if err := f.ensureReady(); err != nil {
		return nil, err
	}
	return sendSequential(ctx, f.platform, Limits{}, chatIDs, msg, f.SendMessage), nil
}

func (f *fakeAdapter) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	if err := f.ensureReady(); err != nil {
		return nil, err
	}
	return &Chat{ID: chatID, Type: ChatGroup, Platform: f.platform}, nil
}

func (f *fakeAdapter) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := f.ensureReady(); err != nil {
		return nil, err
	}
	return &User{ID: userID, Platform: f.platform}, nil
}

func (f *fakeAdapter) SetWebhook(ctx context.Context, opts WebhookOptions) error {
	return f.ensureReady()
}

func (f *fakeAdapter) DeleteWebhook(ctx context.Context) error {
	return f.ensureReady()
}

func (f *fakeAdapter) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	if err := f.ensureReady(); err != nil {
		return nil, err
	}
	return &WebhookInfo{Platform: f.platform}, nil
}

func (f *fakeAdapter) ProcessWebhookUpdate(raw []byte) Update {
	return unrecognizedUpdate(f.platform, "", raw)
}

func (f *fakeAdapter) ValidateToken(token string) bool   { return token != "" }
func (f *fakeAdapter) ValidateChatID(chatID string) bool { return chatID != "" }

func (f *fakeAdapter) FormatText(text string, format TextFormat) string { return text }

func (f *fakeAdapter) Limits() Limits { return Limits{} }

func (f *fakeAdapter) CheckBotPermissions(ctx context.Context, chatID string) Permissions {
	return Permissions{}
}

func (f *fakeAdapter) Dispose() {
	f.disposed.Add(1)
	f.mu.Lock()
	f.resetLocked()
	f.mu.Unlock()
}

func (f *fakeAdapter) sentTo() []string {
	f.sentMu.Lock()
	defer f.sentMu.Unlock()
	return append([]string(nil), f.sent...)
}

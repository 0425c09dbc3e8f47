package maxapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("test-token", WithBaseURL(server.URL+"/"), WithHTTPClient(server.Client()))
}

// TestClient_GetMe tests the identity call and auth header
func TestClient_GetMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user_id":42,"name":"Unibot","username":"unibot","is_bot":true}`))
	})

	me, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), me.UserID)
	assert.Equal(t, "unibot", me.Username)
	assert.True(t, me.IsBot)
}

// TestClient_SendMessage tests the request body and result decoding
func TestClient_SendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("chat_id"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body NewMessageBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body.Text)
		require.NotNil(t, body.Link)
		assert.Equal(t, "mid.1", body.Link.MID)

		w.Write([]byte(`{"message":{"recipient":{"chat_id":100,"chat_type":"chat"},"timestamp":1700000000000,"body":{"mid":"mid.2","text":"hello"}}}`))
	})

	msg, err := client.SendMessage(context.Background(), 100, NewMessageBody{
		Text: "hello",
		Link: &NewMessageLink{Type: "reply", MID: "mid.1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mid.2", msg.Body.MID)
	assert.Equal(t, int64(100), msg.Recipient.ChatID)
}

// TestClient_Errors tests the error envelope and rate limit detection
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		retryAfter   string
		rateLimit    bool
		unauthorized bool
		wantMessage  string
		wantRetry    time.Duration
	}{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"code":"verify.token","message":"Invalid access_token"}`,
			unauthorized: true,
			wantMessage:  "Invalid access_token",
		},
		{
			name:        "too many requests status",
			status:      http.StatusTooManyRequests,
			body:        `{"code":"too.many.requests","message":"Too many requests"}`,
			retryAfter:  "5",
			rateLimit:   true,
			wantMessage: "Too many requests",
			wantRetry:   5 * time.Second,
		},
		{
			name:        "rate limit marker in body",
			status:      http.StatusServiceUnavailable,
			body:        `{"code":"service.unavailable","message":"rate limit exceeded"}`,
			rateLimit:   true,
			wantMessage: "rate limit exceeded",
		},
		{
			name:        "non json body",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetChat(context.Background(), 1)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.rateLimit, apiErr.IsRateLimit())
			assert.Equal(t, tt.unauthorized, apiErr.IsUnauthorized())
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantRetry, apiErr.RetryAfter)
		})
	}
}

// TestClient_Subscriptions tests webhook subscription management
func TestClient_Subscriptions(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"subscriptions":[{"url":"https://example.com/hook","time":1,"update_types":["message_created"]}]}`))
		case http.MethodPost:
			data, _ := io.ReadAll(r.Body)
			var req SubscriptionRequest
			require.NoError(t, json.Unmarshal(data, &req))
			if req.URL == "https://bad.example.com" {
				w.Write([]byte(`{"success":false,"message":"url is not reachable"}`))
				return
			}
			w.Write([]byte(`{"success":true}`))
		case http.MethodDelete:
			deleted = r.URL.Query().Get("url")
			w.Write([]byte(`{"success":true}`))
		}
	})
	ctx := context.Background()

	subs, err := client.Subscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://example.com/hook", subs[0].URL)

	require.NoError(t, client.Subscribe(ctx, SubscriptionRequest{URL: "https://example.com/hook"}))
	err = client.Subscribe(ctx, SubscriptionRequest{URL: "https://bad.example.com"})
	assert.ErrorContains(t, err, "url is not reachable")

	require.NoError(t, client.Unsubscribe(ctx, "https://example.com/hook"))
	assert.Equal(t, "https://example.com/hook", deleted)
}

// TestClient_ContextCancelled tests that a cancelled context aborts the request
func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetMe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

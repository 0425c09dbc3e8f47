// Package maxapi is a small client for the MAX Bot API (https://dev.max.ru).
// It covers the endpoints the messenger adapter needs and nothing more.
package maxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/keepmind9/unibot/internal/logger"
	"github.com/keepmind9/unibot/pkg/constants"
	"github.com/sirupsen/logrus"
)

const maxResponseSize = 1 << 20

// Client calls the MAX Bot API with one bot token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a client for token
func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    constants.DefaultMaxBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: constants.DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMe returns the bot's own identity
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// SendMessage posts a message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, body NewMessageBody) (*Message, error) {
	query := url.Values{"chat_id": {strconv.FormatInt(chatID, 10)}}
	var result sendMessageResult
	if err := c.do(ctx, http.MethodPost, "/messages", query, body, &result); err != nil {
		return nil, err
	}
	return &result.Message, nil
}

// GetChat returns chat details
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	var chat Chat
	if err := c.do(ctx, http.MethodGet, "/chats/"+strconv.FormatInt(chatID, 10), nil, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetMembership returns the bot's own membership in a chat
func (c *Client) GetMembership(ctx context.Context, chatID int64) (*ChatMember, error) {
	var member ChatMember
	path := "/chats/" + strconv.FormatInt(chatID, 10) + "/members/me"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// GetUser returns a user by id
func (c *Client) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(userID, 10), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Subscriptions lists registered webhooks
func (c *Client) Subscriptions(ctx context.Context) ([]Subscription, error) {
	var result subscriptionsResult
	if err := c.do(ctx, http.MethodGet, "/subscriptions", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Subscriptions, nil
}

// Subscribe registers a webhook
func (c *Client) Subscribe(ctx context.Context, req SubscriptionRequest) error {
	var result SimpleResult
	if err := c.do(ctx, http.MethodPost, "/subscriptions", nil, req, &result); err != nil {
		return err
	}
	if !result.Success {
		return &APIError{StatusCode: http.StatusOK, Message: "subscribe rejected: " + result.Message}
	}
	return nil
}

// Unsubscribe removes the webhook registered for webhookURL
func (c *Client) Unsubscribe(ctx context.Context, webhookURL string) error {
	query := url.Values{"url": {webhookURL}}
	var result SimpleResult
	if err := c.do(ctx, http.MethodDelete, "/subscriptions", query, nil, &result); err != nil {
		return err
	}
	if !result.Success {
		return &APIError{StatusCode: http.StatusOK, Message: "unsubscribe rejected: " + result.Message}
	}
	return nil
}

// do runs one JSON request and decodes the response into dest
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("max api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp, data)
		logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"code":   apiErr.Code,
		}).Debug("max-api-request-failed")
		return apiErr
	}

	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

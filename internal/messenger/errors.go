package messenger

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotInitialized is returned by every network operation before a
	// successful Initialize or after Dispose
	ErrNotInitialized = errors.New("adapter not initialized")

	// ErrAdapterNotFound is recorded when a fan-out target has no registered adapter
	ErrAdapterNotFound = errors.New("adapter not found")
)

// Error is a generic platform-reported failure
type Error struct {
	Platform   Platform
	Code       int
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (code %d)", e.Platform, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AuthenticationError means the token is malformed, revoked or was rejected
// during the readiness check
type AuthenticationError struct {
	Platform Platform
	Message  string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authentication failed: %s: %v", e.Platform, e.Message, e.Err)
	}
	return fmt.Sprintf("%s authentication failed: %s", e.Platform, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RateLimitError means the platform throttled the request. RetryAfter is zero
// when the platform gave no hint.
type RateLimitError struct {
	Platform   Platform
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded, retry after %s", e.Platform, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Platform)
}

// InvalidTokenError means the token failed the platform's format check
type InvalidTokenError struct {
	Platform Platform
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid %s token format", e.Platform)
}

// UnsupportedPlatformError is returned by the registry for unknown platforms
type UnsupportedPlatformError struct {
	Platform Platform
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %q", string(e.Platform))
}

// UnsupportedOperationError marks a capability the platform does not offer
type UnsupportedOperationError struct {
	Platform  Platform
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Platform, e.Operation)
}

// IsRateLimit reports whether err is or wraps a RateLimitError
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsUnsupported reports whether err is or wraps an UnsupportedOperationError
func IsUnsupported(err error) bool {
	var u *UnsupportedOperationError
	return errors.As(err, &u)
}

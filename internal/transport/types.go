// Package transport defines the outbound delivery port used by the publisher.
package transport

import (
	"context"
	"fmt"
	"time"
)

// ChatTarget addresses a chat or channel. Chat is either a numeric id
// ("-1001234567890") or a public username ("@channel").
type ChatTarget struct {
	Chat     string
	ThreadID int // forum topic thread id (0 if none)
}

type MessageRef struct {
	Chat      string
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Sender delivers a single text message. Any error means "not delivered".
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// RateLimitError reports that the platform asked us to back off before
// sending again.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

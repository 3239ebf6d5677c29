package sender

import (
	"context"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// MessageSender delivers a text message to the shop's fulfilment inbox.
type MessageSender interface {
	SendMessage(ctx context.Context, msg string) (SendResult, error)
}

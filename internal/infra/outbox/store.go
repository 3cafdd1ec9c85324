package outbox

import (
	"context"
	"time"
)

// EventDocument is one persisted outbox entry.
type EventDocument struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
	Attempts   int
	ClaimedBy  string
	RetryAt    time.Time
	SentAt     time.Time
	LastError  string
}

// Store is the durable queue between mutation transactions and the broker.
type Store interface {
	// Claim returns the next due document or (nil, nil) when the queue is
	// drained.
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error
}

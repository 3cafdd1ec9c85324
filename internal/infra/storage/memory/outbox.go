package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appoutbox "staycal/internal/app/outbox"
	infraoutbox "staycal/internal/infra/outbox"
)

// Outbox keeps event documents in memory, serving both the transactional
// Add side and the worker's claim/ack side.
type Outbox struct {
	mu   sync.Mutex
	docs []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.docs = append(o.docs, &infraoutbox.EventDocument{
		ID:         uuid.NewString(),
		Name:       record.Name,
		Aggregate:  record.Aggregate,
		Payload:    record.Payload,
		Headers:    record.Headers,
		OccurredAt: record.OccurredAt,
	})
	return nil
}

// Claim hands out the oldest unclaimed document that is due.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, doc := range o.docs {
		if doc.ClaimedBy == "" && doc.SentAt.IsZero() && !doc.RetryAt.After(now) {
			doc.ClaimedBy = workerID
			return doc, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, doc := range o.docs {
		if doc.ID == id {
			o.docs = append(o.docs[:i], o.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.docs {
		if doc.ID == id {
			doc.ClaimedBy = ""
			doc.Attempts++
			doc.RetryAt = retryAt
			doc.LastError = reason
			return nil
		}
	}
	return nil
}

// Pending exposes queued event names for tests.
func (o *Outbox) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var names []string
	for _, doc := range o.docs {
		names = append(names, doc.Name)
	}
	return names
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)

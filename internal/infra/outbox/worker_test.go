package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu     sync.Mutex
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (s *stubStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, doc := range s.docs {
		if doc.ClaimedBy == "" && doc.SentAt.IsZero() && !doc.RetryAt.After(now) {
			doc.ClaimedBy = workerID
			return doc, nil
		}
	}
	return nil, nil
}

func (s *stubStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, id)
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.SentAt = time.Now()
		}
	}
	return nil
}

func (s *stubStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, id)
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.ClaimedBy = ""
			doc.Attempts++
			doc.RetryAt = retryAt
			doc.LastError = reason
		}
	}
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type stubProducer struct {
	mu   sync.Mutex
	err  error
	msgs []published
	done chan struct{}
}

func (p *stubProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	if p.done != nil {
		select {
		case p.done <- struct{}{}:
		default:
		}
	}
	return nil
}

func testDoc() *EventDocument {
	return &EventDocument{
		ID:         "doc-1",
		Name:       "calendar.date_blocked",
		Aggregate:  "p1",
		Payload:    []byte(`{"property_id":"p1","date":"2026-08-05T00:00:00Z"}`),
		OccurredAt: time.Date(2026, time.July, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWorkerPublishesEnvelope(t *testing.T) {
	store := &stubStore{docs: []*EventDocument{testDoc()}}
	producer := &stubProducer{done: make(chan struct{}, 1)}
	worker := &Worker{
		Store:    store,
		Producer: producer,
		Interval: time.Millisecond,
		ID:       "w1",
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- worker.Run(ctx) }()

	select {
	case <-producer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never published")
	}
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	require.Len(t, producer.msgs, 1)
	msg := producer.msgs[0]
	assert.Equal(t, "calendar.events.v1", msg.topic)
	assert.Equal(t, "p1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "calendar.date_blocked.v1", envelope["type"])
	assert.Equal(t, "app://staycal", envelope["source"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["property_id"])

	assert.Equal(t, []string{"doc-1"}, store.sent)
	assert.Empty(t, store.failed)
}

func TestWorkerTopicPrefix(t *testing.T) {
	worker := &Worker{TopicPrefix: "staging."}
	assert.Equal(t, "staging.calendar.events.v1", worker.topicFor("calendar.date_blocked"))
	assert.Equal(t, "staging.booking.events.v1", worker.topicFor("booking.confirmed"))
	assert.Equal(t, "staging.heartbeat.events.v1", worker.topicFor("heartbeat"))
}

func TestWorkerRetriesWithBackoff(t *testing.T) {
	store := &stubStore{docs: []*EventDocument{testDoc()}}
	producer := &stubProducer{err: errors.New("broker down")}
	worker := &Worker{
		Store:    store,
		Producer: producer,
		ID:       "w1",
		Backoff:  []time.Duration{time.Hour},
	}

	require.NoError(t, worker.processOnce(context.Background()))

	require.Len(t, store.failed, 1)
	doc := store.docs[0]
	assert.Equal(t, 1, doc.Attempts)
	assert.Equal(t, "broker down", doc.LastError)
	assert.True(t, doc.RetryAt.After(time.Now().Add(30*time.Minute)), "first backoff step applies")

	// still claimed by nobody and not yet due, so the next pass is a no-op
	require.NoError(t, worker.processOnce(context.Background()))
	assert.Len(t, store.failed, 1)
}

func TestWorkerRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}

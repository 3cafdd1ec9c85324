package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	ErrFeedNotFound   = errors.New("calendar: feed config not found")
	ErrFeedURLMissing = errors.New("calendar: import feed requires a url")
)

type FeedDirection string

const (
	FeedImport FeedDirection = "import"
	FeedExport FeedDirection = "export"
)

// FeedConfig describes one external calendar feed attached to a property.
// Import feeds are polled on a schedule; export feeds only record that an
// external platform consumes the public sync URL.
type FeedConfig struct {
	ID           string
	PropertyID   string
	Name         string
	URL          string
	Direction    FeedDirection
	Active       bool
	SyncInterval time.Duration
	LastSync     time.Time
}

// NewFeedConfig validates and normalizes a feed definition.
func NewFeedConfig(id, propertyID, name, url string, direction FeedDirection, interval time.Duration) (FeedConfig, error) {
	if direction == FeedImport && url == "" {
		return FeedConfig{}, ErrFeedURLMissing
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return FeedConfig{
		ID:           id,
		PropertyID:   propertyID,
		Name:         name,
		URL:          url,
		Direction:    direction,
		Active:       true,
		SyncInterval: interval,
	}, nil
}

// Due reports whether an import feed should be fetched again.
func (f FeedConfig) Due(now time.Time) bool {
	if !f.Active || f.Direction != FeedImport {
		return false
	}
	if f.LastSync.IsZero() {
		return true
	}
	return now.Sub(f.LastSync) >= f.SyncInterval
}

type FeedConfigRepository interface {
	ByID(ctx context.Context, id string) (FeedConfig, error)
	ByProperty(ctx context.Context, propertyID string) ([]FeedConfig, error)
	ListActiveImports(ctx context.Context) ([]FeedConfig, error)
	Save(ctx context.Context, cfg FeedConfig) error
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

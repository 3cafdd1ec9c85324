package calendar

import (
	"context"
	"errors"
	"time"
)

var ErrBlockNotFound = errors.New("calendar: blocked date not found")

type BlockSource string

const (
	SourceManual  BlockSource = "manual"
	SourceICal    BlockSource = "ical"
	SourceBooking BlockSource = "booking"
)

// BlockedDate marks a single day as unavailable. Rows are toggled by
// delete+recreate; there is no update path.
type BlockedDate struct {
	ID         string
	PropertyID string
	Date       time.Time
	Source     BlockSource
	CreatedAt  time.Time
}

// NewBlockedDate normalizes the date and stamps creation time.
func NewBlockedDate(id, propertyID string, date time.Time, source BlockSource, now time.Time) BlockedDate {
	return BlockedDate{
		ID:         id,
		PropertyID: propertyID,
		Date:       Midnight(date),
		Source:     source,
		CreatedAt:  now.UTC(),
	}
}

type BlockRepository interface {
	ByProperty(ctx context.Context, propertyID string) ([]BlockedDate, error)
	Save(ctx context.Context, block BlockedDate) error
	// Delete removes every manual/ical block for the given day. Returning
	// ErrBlockNotFound when nothing matched lets callers decide whether that
	// matters; unblock treats it as a no-op.
	Delete(ctx context.Context, propertyID string, date time.Time) error
}

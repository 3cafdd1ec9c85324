package booking

import (
	"context"
	"errors"
	"time"

	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrGuestRequired   = errors.New("booking: guest id required")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// Booking is a guest stay request. Only confirmed bookings participate in
// availability reconciliation; a booking is never deleted, its status
// transition is the only mutation the calendar cares about.
type Booking struct {
	ID         BookingID
	PropertyID string
	GuestID    string
	Stay       calendar.Interval
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type CreateParams struct {
	ID         BookingID
	PropertyID string
	GuestID    string
	Stay       calendar.Interval
	Status     Status
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.PropertyID == "" {
		return nil, errors.New("booking: property id required")
	}
	status := params.Status
	if status == "" {
		status = StatusPending
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		Stay:       params.Stay,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{BookingID: b.ID, PropertyID: b.PropertyID, GuestID: b.GuestID, Stay: b.Stay, Status: b.Status, At: now})
	return b, nil
}

// Blocking reports whether the booking occupies its stay interval.
func (b *Booking) Blocking() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Stay: b.Stay, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Reject(reason string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusRejected
	b.UpdatedAt = now.UTC()
	b.Record(BookingRejected{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByProperty(ctx context.Context, propertyID string) ([]*Booking, error)
	// ListConfirmed returns only bookings that block dates.
	ListConfirmed(ctx context.Context, propertyID string) ([]*Booking, error)
}

// ConfirmedStays projects confirmed bookings onto their end-exclusive
// intervals for the availability resolver.
func ConfirmedStays(bookings []*Booking) []calendar.Interval {
	var stays []calendar.Interval
	for _, b := range bookings {
		if b.Blocking() {
			stays = append(stays, b.Stay)
		}
	}
	return stays
}

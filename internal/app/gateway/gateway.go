// Package gateway is the single mutation surface for reconciled calendar
// state. Every operation runs as one logical transaction and records its
// domain events through the outbox before committing.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staycal/internal/app/outbox"
	"staycal/internal/app/uow"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/events"
	"staycal/internal/domain/shared/money"
)

var (
	ErrAlreadyBlocked   = errors.New("gateway: date already blocked")
	ErrIntervalConflict = errors.New("gateway: stay overlaps a confirmed booking")
	ErrStayRequired     = errors.New("gateway: bookings need an end-exclusive stay of at least one night")
)

type Gateway struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger

	// Now and NewID exist so tests can pin time and ids.
	Now   func() time.Time
	NewID func() string
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

func (g *Gateway) newID() string {
	if g.NewID != nil {
		return g.NewID()
	}
	return uuid.NewString()
}

// BlockDate inserts a manual block for the given day. A duplicate manual
// block fails with ErrAlreadyBlocked rather than creating a second row.
func (g *Gateway) BlockDate(ctx context.Context, propertyID string, date time.Time) (domaincalendar.BlockedDate, error) {
	var block domaincalendar.BlockedDate
	err := g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		day := domaincalendar.Midnight(date)
		existing, err := unit.Blocks().ByProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		for _, b := range existing {
			if b.Source == domaincalendar.SourceManual && domaincalendar.SameDay(b.Date, day) {
				return ErrAlreadyBlocked
			}
		}
		now := g.now()
		block = domaincalendar.NewBlockedDate(g.newID(), propertyID, day, domaincalendar.SourceManual, now)
		if err := unit.Blocks().Save(ctx, block); err != nil {
			return err
		}
		return g.record(ctx, domaincalendar.DateBlocked{PropertyID: propertyID, Date: day, Source: block.Source, At: now})
	})
	return block, err
}

// UnblockDate removes the manual/ical block for the day. Unblocking a free
// day is a no-op, not an error.
func (g *Gateway) UnblockDate(ctx context.Context, propertyID string, date time.Time) error {
	return g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		day := domaincalendar.Midnight(date)
		err := unit.Blocks().Delete(ctx, propertyID, day)
		if errors.Is(err, domaincalendar.ErrBlockNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return g.record(ctx, domaincalendar.DateUnblocked{PropertyID: propertyID, Date: day, At: g.now()})
	})
}

// SetSpecialPrice upserts the override price for one date.
func (g *Gateway) SetSpecialPrice(ctx context.Context, propertyID string, date time.Time, price money.Money) (domainpricing.SpecialPrice, error) {
	var sp domainpricing.SpecialPrice
	err := g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		var err error
		sp, err = domainpricing.NewSpecialPrice(g.newID(), propertyID, date, price)
		if err != nil {
			return err
		}
		if err := unit.Prices().Upsert(ctx, sp); err != nil {
			return err
		}
		return g.record(ctx, domainpricing.SpecialPriceSet{PropertyID: propertyID, Date: sp.Date, Price: price, At: g.now()})
	})
	return sp, err
}

// ClearSpecialPrice removes the override for one date; absent is a no-op.
func (g *Gateway) ClearSpecialPrice(ctx context.Context, propertyID string, date time.Time) error {
	return g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		day := domaincalendar.Midnight(date)
		err := unit.Prices().Delete(ctx, propertyID, day)
		if errors.Is(err, domainpricing.ErrPriceNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return g.record(ctx, domainpricing.SpecialPriceCleared{PropertyID: propertyID, Date: day, At: g.now()})
	})
}

// CreateBooking persists a new stay request after checking it does not
// overlap a confirmed booking for the same property. The store cannot
// enforce this, so the gateway must.
func (g *Gateway) CreateBooking(ctx context.Context, propertyID, guestID string, stay domaincalendar.Interval, status domainbooking.Status) (*domainbooking.Booking, error) {
	if stay.EndInclusive || stay.Nights() < 1 {
		return nil, ErrStayRequired
	}
	var created *domainbooking.Booking
	err := g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		confirmed, err := unit.Bookings().ListConfirmed(ctx, propertyID)
		if err != nil {
			return err
		}
		for _, other := range confirmed {
			if other.Stay.Overlaps(stay) {
				return fmt.Errorf("%w: booking %s", ErrIntervalConflict, other.ID)
			}
		}
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(g.newID()),
			PropertyID: propertyID,
			GuestID:    guestID,
			Stay:       stay,
			Status:     status,
			CreatedAt:  g.now(),
		})
		if err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		created = b
		return g.drain(ctx, &b.EventRecorder)
	})
	return created, err
}

// ConfirmBooking transitions a pending booking to confirmed, making its stay
// block dates from the next classification on.
func (g *Gateway) ConfirmBooking(ctx context.Context, id domainbooking.BookingID) error {
	return g.transition(ctx, id, func(b *domainbooking.Booking, now time.Time) error {
		return b.Confirm(now)
	})
}

func (g *Gateway) RejectBooking(ctx context.Context, id domainbooking.BookingID, reason string) error {
	return g.transition(ctx, id, func(b *domainbooking.Booking, now time.Time) error {
		return b.Reject(reason, now)
	})
}

func (g *Gateway) CancelBooking(ctx context.Context, id domainbooking.BookingID, reason string) error {
	return g.transition(ctx, id, func(b *domainbooking.Booking, now time.Time) error {
		return b.Cancel(reason, now)
	})
}

// ImportSummary reports a bulk import outcome. Dates already blocked from the
// same feed count as succeeded: the import is idempotent on property+date.
type ImportSummary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BulkImportBlocks inserts ical-sourced blocks one date at a time, continuing
// past individual failures and reporting the split.
func (g *Gateway) BulkImportBlocks(ctx context.Context, propertyID string, dates []time.Time) (ImportSummary, error) {
	var summary ImportSummary
	for _, date := range dates {
		if err := g.importBlock(ctx, propertyID, date); err != nil {
			summary.Failed++
			if g.Logger != nil {
				g.Logger.Warn("imported block rejected", "property_id", propertyID, "date", domaincalendar.Midnight(date).Format("2006-01-02"), "error", err)
			}
			continue
		}
		summary.Succeeded++
	}
	return summary, nil
}

func (g *Gateway) importBlock(ctx context.Context, propertyID string, date time.Time) error {
	return g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		day := domaincalendar.Midnight(date)
		existing, err := unit.Blocks().ByProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		for _, b := range existing {
			if b.Source == domaincalendar.SourceICal && domaincalendar.SameDay(b.Date, day) {
				return nil
			}
		}
		now := g.now()
		block := domaincalendar.NewBlockedDate(g.newID(), propertyID, day, domaincalendar.SourceICal, now)
		if err := unit.Blocks().Save(ctx, block); err != nil {
			return err
		}
		return g.record(ctx, domaincalendar.DateBlocked{PropertyID: propertyID, Date: day, Source: block.Source, At: now})
	})
}

func (g *Gateway) transition(ctx context.Context, id domainbooking.BookingID, apply func(*domainbooking.Booking, time.Time) error) error {
	return g.inUnit(ctx, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(b, g.now()); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return err
		}
		return g.drain(ctx, &b.EventRecorder)
	})
}

// inUnit runs fn inside a transaction, committing on success and rolling
// back on any error. The unit's transaction state is threaded through the
// context so repository and outbox writes join the same transaction.
func (g *Gateway) inUnit(ctx context.Context, fn func(context.Context, uow.UnitOfWork) error) error {
	unit, err := g.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.InjectContext(ctx, unit)
	if err := fn(ctx, unit); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	return unit.Commit(ctx)
}

func (g *Gateway) record(ctx context.Context, event events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, g.Outbox, g.Encoder, []events.DomainEvent{event})
}

func (g *Gateway) drain(ctx context.Context, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	return outbox.RecordDomainEvents(ctx, g.Outbox, g.Encoder, pending)
}

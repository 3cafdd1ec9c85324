package memory

import (
	"context"
	"errors"

	"staycal/internal/app/uow"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	BookingRepo *BookingRepository
	BlockRepo   *BlockRepository
	PriceRepo   *SpecialPriceRepository
	FeedRepo    *FeedConfigRepository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory with fresh empty stores, handy in tests.
func NewFactory() Factory {
	return Factory{
		BookingRepo: NewBookingRepository(),
		BlockRepo:   NewBlockRepository(),
		PriceRepo:   NewSpecialPriceRepository(),
		FeedRepo:    NewFeedConfigRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.BookingRepo == nil || f.BlockRepo == nil || f.PriceRepo == nil || f.FeedRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		bookings: f.BookingRepo,
		blocks:   f.BlockRepo,
		prices:   f.PriceRepo,
		feeds:    f.FeedRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	bookings *BookingRepository
	blocks   *BlockRepository
	prices   *SpecialPriceRepository
	feeds    *FeedConfigRepository
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Blocks() domaincalendar.BlockRepository {
	return u.blocks
}

func (u *Unit) Prices() domainpricing.SpecialPriceRepository {
	return u.prices
}

func (u *Unit) Feeds() domaincalendar.FeedConfigRepository {
	return u.feeds
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}

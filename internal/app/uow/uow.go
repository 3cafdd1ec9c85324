package uow

import (
	"context"

	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Bookings() domainbooking.Repository
	Blocks() domaincalendar.BlockRepository
	Prices() domainpricing.SpecialPriceRepository
	Feeds() domaincalendar.FeedConfigRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// InjectContext returns a context carrying the unit's transaction state when
// the store supports it. Repository calls made with the returned context run
// inside the unit's transaction; stores without the capability get the
// context back unchanged.
func InjectContext(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		return injector.InjectContext(ctx)
	}
	return ctx
}

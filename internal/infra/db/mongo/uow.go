package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staycal/internal/app/uow"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	BookingRepo *BookingRepository
	BlockRepo   *BlockRepository
	PriceRepo   *SpecialPriceRepository
	FeedRepo    *FeedConfigRepository
}

// NewFactory builds repositories over the given database handle.
func NewFactory(client *Client) Factory {
	return Factory{
		DB:          client.DB,
		BookingRepo: NewBookingRepository(client.DB),
		BlockRepo:   NewBlockRepository(client.DB),
		PriceRepo:   NewSpecialPriceRepository(client.DB),
		FeedRepo:    NewFeedConfigRepository(client.DB),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		bookings: f.BookingRepo,
		blocks:   f.BlockRepo,
		prices:   f.PriceRepo,
		feeds:    f.FeedRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repository calls.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}

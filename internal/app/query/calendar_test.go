package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staycal/internal/app/gateway"
	"staycal/internal/app/uow"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
	"staycal/internal/infra/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *gateway.Gateway) {
	t.Helper()
	factory := memory.NewFactory()
	rates := memory.NewRateCardStore()
	rates.Seed("p1", domainpricing.RateCard{
		Weekday: money.Must(10000, "EUR"),
		Weekend: money.Must(15000, "EUR"),
		Monthly: money.Must(210000, "EUR"),
		Daily:   money.Must(10000, "EUR"),
	})
	svc := &Service{
		UoWFactory: factory,
		Rates:      rates,
		Now:        func() time.Time { return day(2026, time.August, 15) },
	}
	gw := &gateway.Gateway{UoWFactory: factory}
	return svc, gw
}

func TestMonthViewReconcilesAllSources(t *testing.T) {
	svc, gw := newTestService(t)
	ctx := context.Background()

	stay, err := domaincalendar.NewStay(day(2026, time.August, 1), day(2026, time.August, 3))
	require.NoError(t, err)
	b, err := gw.CreateBooking(ctx, "p1", "g1", stay, domainbooking.StatusPending)
	require.NoError(t, err)
	require.NoError(t, gw.ConfirmBooking(ctx, b.ID))

	_, err = gw.BlockDate(ctx, "p1", day(2026, time.August, 10))
	require.NoError(t, err)
	_, err = gw.BulkImportBlocks(ctx, "p1", []time.Time{day(2026, time.August, 12)})
	require.NoError(t, err)
	_, err = gw.SetSpecialPrice(ctx, "p1", day(2026, time.August, 20), money.Must(9900, "EUR"))
	require.NoError(t, err)

	view, err := svc.MonthView(ctx, "p1", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, "p1", view.PropertyID)
	require.Len(t, view.Days, 31)

	byDate := map[time.Time]Day{}
	for _, d := range view.Days {
		byDate[d.Date] = d
	}

	assert.Equal(t, domaincalendar.StatusBooked, byDate[day(2026, time.August, 1)].Status)
	assert.Equal(t, domaincalendar.StatusBooked, byDate[day(2026, time.August, 2)].Status)
	assert.Equal(t, domaincalendar.StatusAvailable, byDate[day(2026, time.August, 3)].Status, "checkout day stays free")
	assert.Equal(t, domaincalendar.StatusBlockedManual, byDate[day(2026, time.August, 10)].Status)
	assert.Equal(t, domaincalendar.StatusBlockedICal, byDate[day(2026, time.August, 12)].Status)

	// pricing: override wins, otherwise weekday/weekend bucket
	assert.Equal(t, money.Must(9900, "EUR"), byDate[day(2026, time.August, 20)].Price)
	assert.Equal(t, money.Must(15000, "EUR"), byDate[day(2026, time.August, 8)].Price, "saturday uses the weekend rate")
	assert.Equal(t, money.Must(10000, "EUR"), byDate[day(2026, time.August, 10)].Price, "blocked days still price")

	assert.True(t, byDate[day(2026, time.August, 14)].Past)
	assert.False(t, byDate[day(2026, time.August, 15)].Past)
}

func TestMonthViewUnknownRateCard(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MonthView(context.Background(), "unknown", 2026, time.August)
	assert.ErrorIs(t, err, domainpricing.ErrRateCardNotFound)
}

func TestStayQuote(t *testing.T) {
	svc, gw := newTestService(t)
	ctx := context.Background()

	_, err := gw.SetSpecialPrice(ctx, "p1", day(2026, time.August, 8), money.Must(9900, "EUR"))
	require.NoError(t, err)

	// Fri..Mon: weekday + override + weekend
	stay, err := domaincalendar.NewStay(day(2026, time.August, 7), day(2026, time.August, 10))
	require.NoError(t, err)
	total, err := svc.StayQuote(ctx, "p1", stay)
	require.NoError(t, err)
	assert.Equal(t, money.Must(34900, "EUR"), total)
}

type unitCtxKey struct{}

func inTxn(ctx context.Context) bool {
	v, _ := ctx.Value(unitCtxKey{}).(bool)
	return v
}

// readUnit records whether each repository call carried the unit's
// transaction state.
type readUnit struct {
	bookingsInTxn bool
	blocksInTxn   bool
	pricesInTxn   bool
}

func (u *readUnit) Bookings() domainbooking.Repository { return (*readBookings)(u) }

func (u *readUnit) Blocks() domaincalendar.BlockRepository { return (*readBlocks)(u) }

func (u *readUnit) Prices() domainpricing.SpecialPriceRepository { return (*readPrices)(u) }

func (u *readUnit) Feeds() domaincalendar.FeedConfigRepository { return nil }

func (u *readUnit) Commit(ctx context.Context) error { return nil }

func (u *readUnit) Rollback(ctx context.Context) error { return nil }

func (u *readUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, unitCtxKey{}, true)
}

type readBookings readUnit

func (r *readBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return nil, domainbooking.ErrBookingNotFound
}

func (r *readBookings) Save(ctx context.Context, b *domainbooking.Booking) error { return nil }

func (r *readBookings) ListByProperty(ctx context.Context, propertyID string) ([]*domainbooking.Booking, error) {
	return nil, nil
}

func (r *readBookings) ListConfirmed(ctx context.Context, propertyID string) ([]*domainbooking.Booking, error) {
	r.bookingsInTxn = inTxn(ctx)
	return nil, nil
}

type readBlocks readUnit

func (r *readBlocks) ByProperty(ctx context.Context, propertyID string) ([]domaincalendar.BlockedDate, error) {
	r.blocksInTxn = inTxn(ctx)
	return nil, nil
}

func (r *readBlocks) Save(ctx context.Context, block domaincalendar.BlockedDate) error { return nil }

func (r *readBlocks) Delete(ctx context.Context, propertyID string, date time.Time) error {
	return nil
}

type readPrices readUnit

func (r *readPrices) ByProperty(ctx context.Context, propertyID string) ([]domainpricing.SpecialPrice, error) {
	r.pricesInTxn = inTxn(ctx)
	return nil, nil
}

func (r *readPrices) Upsert(ctx context.Context, sp domainpricing.SpecialPrice) error { return nil }

func (r *readPrices) Delete(ctx context.Context, propertyID string, date time.Time) error {
	return nil
}

type readFactory struct{ unit *readUnit }

func (f readFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestSnapshotReadsInUnitContext(t *testing.T) {
	unit := &readUnit{}
	svc := &Service{UoWFactory: readFactory{unit: unit}}

	_, _, _, err := svc.Snapshot(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, unit.bookingsInTxn, "booking reads see the unit's transaction state")
	assert.True(t, unit.blocksInTxn, "block reads see the unit's transaction state")
	assert.True(t, unit.pricesInTxn, "price reads see the unit's transaction state")
}

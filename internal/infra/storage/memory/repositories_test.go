package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newBooking(t *testing.T, id, propertyID string, status domainbooking.Status) *domainbooking.Booking {
	t.Helper()
	stay, err := domaincalendar.NewStay(day(2026, time.August, 1), day(2026, time.August, 3))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: propertyID,
		GuestID:    "g1",
		Stay:       stay,
		Status:     status,
		CreatedAt:  day(2026, time.July, 1),
	})
	require.NoError(t, err)
	return b
}

func TestBookingRepositoryVersioning(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	b := newBooking(t, "b1", "p1", domainbooking.StatusPending)
	require.NoError(t, repo.Save(ctx, b))
	assert.Equal(t, int64(1), b.Version)

	loaded, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	require.NoError(t, loaded.Confirm(day(2026, time.July, 2)))
	require.NoError(t, repo.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	// reads hand out clones, mutating them does not leak into the store
	loaded.Status = domainbooking.StatusCancelled
	fresh, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, fresh.Status)
}

func TestBookingRepositoryListConfirmed(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	pending := newBooking(t, "b1", "p1", domainbooking.StatusPending)
	confirmed := newBooking(t, "b2", "p1", domainbooking.StatusConfirmed)
	otherProperty := newBooking(t, "b3", "p2", domainbooking.StatusConfirmed)
	for _, b := range []*domainbooking.Booking{pending, confirmed, otherProperty} {
		require.NoError(t, repo.Save(ctx, b))
	}

	got, err := repo.ListConfirmed(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domainbooking.BookingID("b2"), got[0].ID)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestBlockRepositoryDeleteSparesBookingRows(t *testing.T) {
	repo := NewBlockRepository()
	ctx := context.Background()
	target := day(2026, time.August, 5)

	require.NoError(t, repo.Save(ctx, domaincalendar.NewBlockedDate("bl1", "p1", target, domaincalendar.SourceManual, time.Now())))
	require.NoError(t, repo.Save(ctx, domaincalendar.NewBlockedDate("bl2", "p1", target, domaincalendar.SourceBooking, time.Now())))

	require.NoError(t, repo.Delete(ctx, "p1", target))

	left, err := repo.ByProperty(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, domaincalendar.SourceBooking, left[0].Source, "booking-derived rows only clear via booking transitions")

	assert.ErrorIs(t, repo.Delete(ctx, "p1", day(2026, time.August, 6)), domaincalendar.ErrBlockNotFound)
}

func TestSpecialPriceRepositoryUpsertKeepsID(t *testing.T) {
	repo := NewSpecialPriceRepository()
	ctx := context.Background()
	target := day(2026, time.August, 8)

	first, err := domainpricing.NewSpecialPrice("sp1", "p1", target, money.Must(9900, "EUR"))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, first))

	second, err := domainpricing.NewSpecialPrice("sp2", "p1", target, money.Must(12000, "EUR"))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, second))

	stored, err := repo.ByProperty(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "sp1", stored[0].ID, "replacing the value keeps the original row identity")
	assert.Equal(t, money.Must(12000, "EUR"), stored[0].Price)
}

func TestRateCardStore(t *testing.T) {
	store := NewRateCardStore()
	_, err := store.RateCard(context.Background(), "p1")
	assert.ErrorIs(t, err, domainpricing.ErrRateCardNotFound)

	rc := domainpricing.RateCard{Weekday: money.Must(10000, "EUR"), Weekend: money.Must(15000, "EUR")}
	store.Seed("p1", rc)
	got, err := store.RateCard(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, rc, got)
}

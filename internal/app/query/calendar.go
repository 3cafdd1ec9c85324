// Package query is the single fetch+classify path for calendar views. Any
// surface that needs per-day status or pricing goes through here instead of
// re-deriving it from raw rows.
package query

import (
	"context"
	"sort"
	"time"

	"staycal/internal/app/uow"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainpricing "staycal/internal/domain/pricing"
	"staycal/internal/domain/shared/money"
)

type Service struct {
	UoWFactory uow.UoWFactory
	Rates      domainpricing.RateCardSource

	Now func() time.Time
}

// Day is one annotated calendar cell.
type Day struct {
	Date   time.Time
	Status domaincalendar.DayStatus
	Past   bool
	Price  money.Money
}

type MonthView struct {
	PropertyID string
	Year       int
	Month      time.Month
	Days       []Day
}

// Snapshot loads the reconciliation inputs for one property in a read-only
// unit and hands them to the pure resolver, along with the confirmed
// bookings they came from. Mutations always go through the gateway followed
// by a fresh call here; nothing is cached in between.
func (s *Service) Snapshot(ctx context.Context, propertyID string) (domaincalendar.Snapshot, []*domainbooking.Booking, []domainpricing.SpecialPrice, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return domaincalendar.Snapshot{}, nil, nil, err
	}
	ctx = uow.InjectContext(ctx, unit)
	defer func() { _ = unit.Rollback(ctx) }()

	confirmed, err := unit.Bookings().ListConfirmed(ctx, propertyID)
	if err != nil {
		return domaincalendar.Snapshot{}, nil, nil, err
	}
	blocks, err := unit.Blocks().ByProperty(ctx, propertyID)
	if err != nil {
		return domaincalendar.Snapshot{}, nil, nil, err
	}
	specials, err := unit.Prices().ByProperty(ctx, propertyID)
	if err != nil {
		return domaincalendar.Snapshot{}, nil, nil, err
	}
	snap := domaincalendar.Snapshot{
		ConfirmedStays: domainbooking.ConfirmedStays(confirmed),
		Blocks:         blocks,
	}
	return snap, confirmed, specials, nil
}

// MonthView classifies and prices every day of the given month in one pass.
func (s *Service) MonthView(ctx context.Context, propertyID string, year int, month time.Month) (MonthView, error) {
	snap, _, specials, err := s.Snapshot(ctx, propertyID)
	if err != nil {
		return MonthView{}, err
	}
	rateCard, err := s.Rates.RateCard(ctx, propertyID)
	if err != nil {
		return MonthView{}, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	span, err := domaincalendar.NewDaySpan(first, last)
	if err != nil {
		return MonthView{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}

	statuses := domaincalendar.ClassifyRange(span, snap)
	view := MonthView{PropertyID: propertyID, Year: year, Month: month}
	for _, day := range span.Days() {
		price, err := domainpricing.PriceFor(day, specials, rateCard)
		if err != nil {
			return MonthView{}, err
		}
		view.Days = append(view.Days, Day{
			Date:   day,
			Status: statuses[day],
			Past:   domaincalendar.IsPast(day, now),
			Price:  price,
		})
	}
	sort.Slice(view.Days, func(i, j int) bool { return view.Days[i].Date.Before(view.Days[j].Date) })
	return view, nil
}

// StayQuote prices an end-exclusive stay using current overrides and rates.
func (s *Service) StayQuote(ctx context.Context, propertyID string, stay domaincalendar.Interval) (money.Money, error) {
	_, _, specials, err := s.Snapshot(ctx, propertyID)
	if err != nil {
		return money.Money{}, err
	}
	rateCard, err := s.Rates.RateCard(ctx, propertyID)
	if err != nil {
		return money.Money{}, err
	}
	return domainpricing.PriceForRange(stay, specials, rateCard)
}

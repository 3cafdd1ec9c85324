package pricing

import (
	"context"
	"errors"
	"time"

	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/money"
)

var (
	ErrInvalidPrice       = errors.New("pricing: price must be positive")
	ErrPriceNotFound      = errors.New("pricing: special price not found")
	ErrStayRequired       = errors.New("pricing: range pricing needs an end-exclusive stay")
	ErrRateCardIncomplete = errors.New("pricing: rate card missing nightly rates")
	ErrRateCardNotFound   = errors.New("pricing: rate card not found")
)

// RateCard carries a property's base rates. Mutated only through property
// CRUD elsewhere; read-only input here. Monthly is a separate non-nightly
// product and never folds into per-day pricing.
type RateCard struct {
	Weekday money.Money
	Weekend money.Money
	Monthly money.Money
	Daily   money.Money
}

func (rc RateCard) Validate() error {
	if rc.Weekday.Currency == "" || rc.Weekend.Currency == "" {
		return ErrRateCardIncomplete
	}
	return nil
}

// SpecialPrice overrides the base rate for exactly one date. At most one row
// per (property, date); setting again replaces the previous value.
type SpecialPrice struct {
	ID         string
	PropertyID string
	Date       time.Time
	Price      money.Money
}

func NewSpecialPrice(id, propertyID string, date time.Time, price money.Money) (SpecialPrice, error) {
	if !price.IsPositive() {
		return SpecialPrice{}, ErrInvalidPrice
	}
	return SpecialPrice{
		ID:         id,
		PropertyID: propertyID,
		Date:       calendar.Midnight(date),
		Price:      price,
	}, nil
}

// IsWeekend reports Saturday/Sunday under the default Gregorian week.
func IsWeekend(date time.Time) bool {
	switch calendar.Midnight(date).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// PriceFor resolves the nightly price of one date: an exact-date special
// price wins, otherwise the weekday/weekend bucket of the rate card.
func PriceFor(date time.Time, specials []SpecialPrice, rateCard RateCard) (money.Money, error) {
	if err := rateCard.Validate(); err != nil {
		return money.Money{}, err
	}
	d := calendar.Midnight(date)
	for _, sp := range specials {
		if calendar.SameDay(sp.Date, d) {
			return sp.Price, nil
		}
	}
	if IsWeekend(d) {
		return rateCard.Weekend, nil
	}
	return rateCard.Weekday, nil
}

// PriceForRange sums per-night prices over an end-exclusive stay: N nights
// between check-in and check-out, the checkout day itself is free.
func PriceForRange(stay calendar.Interval, specials []SpecialPrice, rateCard RateCard) (money.Money, error) {
	if stay.EndInclusive {
		return money.Money{}, ErrStayRequired
	}
	total := money.Money{Currency: rateCard.Weekday.Currency}
	for _, night := range stay.Days() {
		p, err := PriceFor(night, specials, rateCard)
		if err != nil {
			return money.Money{}, err
		}
		total, err = total.Add(p)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

type SpecialPriceRepository interface {
	ByProperty(ctx context.Context, propertyID string) ([]SpecialPrice, error)
	// Upsert replaces any existing row for the same (property, date).
	Upsert(ctx context.Context, sp SpecialPrice) error
	Delete(ctx context.Context, propertyID string, date time.Time) error
}

// RateCardSource is the collaborator interface exposed by property CRUD.
type RateCardSource interface {
	RateCard(ctx context.Context, propertyID string) (RateCard, error)
}

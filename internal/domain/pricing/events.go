package pricing

import (
	"time"

	"staycal/internal/domain/shared/money"
)

type SpecialPriceSet struct {
	PropertyID string
	Date       time.Time
	Price      money.Money
	At         time.Time
}

func (e SpecialPriceSet) EventName() string     { return "pricing.special_price_set" }
func (e SpecialPriceSet) AggregateID() string   { return e.PropertyID }
func (e SpecialPriceSet) OccurredAt() time.Time { return e.At }

type SpecialPriceCleared struct {
	PropertyID string
	Date       time.Time
	At         time.Time
}

func (e SpecialPriceCleared) EventName() string     { return "pricing.special_price_cleared" }
func (e SpecialPriceCleared) AggregateID() string   { return e.PropertyID }
func (e SpecialPriceCleared) OccurredAt() time.Time { return e.At }

package dto

import (
	"time"

	"staycal/internal/app/query"
)

const dateLayout = "2006-01-02"

type CalendarDay struct {
	Date       string `json:"date"`
	Status     string `json:"status"`
	Past       bool   `json:"past"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

type MonthCalendar struct {
	PropertyID string        `json:"property_id"`
	Month      string        `json:"month"`
	Days       []CalendarDay `json:"days"`
}

func MapMonthView(view query.MonthView) MonthCalendar {
	out := MonthCalendar{
		PropertyID: view.PropertyID,
		Month:      time.Date(view.Year, view.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
	}
	for _, day := range view.Days {
		out.Days = append(out.Days, CalendarDay{
			Date:       day.Date.Format(dateLayout),
			Status:     string(day.Status),
			Past:       day.Past,
			PriceCents: day.Price.Amount,
			Currency:   day.Price.Currency,
		})
	}
	return out
}

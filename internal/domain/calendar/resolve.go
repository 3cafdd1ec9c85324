package calendar

import "time"

// DayStatus classifies a single calendar day for one property.
type DayStatus string

const (
	StatusAvailable     DayStatus = "available"
	StatusBooked        DayStatus = "booked"
	StatusBlockedManual DayStatus = "blocked_manual"
	StatusBlockedICal   DayStatus = "blocked_ical"
)

// Snapshot carries the pre-fetched reconciliation inputs for one property.
// Resolution never touches a store; fetching is the caller's job.
type Snapshot struct {
	// ConfirmedStays are the end-exclusive intervals of confirmed bookings.
	ConfirmedStays []Interval
	Blocks         []BlockedDate
}

// Classify resolves the status of one day. Priority order, first match wins:
// a confirmed booking is ground truth and dominates a stale block, an
// imported block outranks a manual one for display purposes.
func Classify(date time.Time, snap Snapshot) DayStatus {
	d := Midnight(date)
	for _, stay := range snap.ConfirmedStays {
		if stay.Contains(d) {
			return StatusBooked
		}
	}
	for _, block := range snap.Blocks {
		if block.Source == SourceICal && SameDay(block.Date, d) {
			return StatusBlockedICal
		}
	}
	for _, block := range snap.Blocks {
		if block.Source != SourceICal && SameDay(block.Date, d) {
			return StatusBlockedManual
		}
	}
	return StatusAvailable
}

// ClassifyRange resolves every day of the given span in one pass over the
// snapshot, keyed by UTC midnight.
func ClassifyRange(span Interval, snap Snapshot) map[time.Time]DayStatus {
	out := make(map[time.Time]DayStatus)
	for _, day := range span.Days() {
		out[day] = Classify(day, snap)
	}
	return out
}

// IsPast reports whether the date is strictly before today. Informational
// only: a past available day still classifies as available.
func IsPast(date, now time.Time) bool {
	return Midnight(date).Before(Midnight(now))
}

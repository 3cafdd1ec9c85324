package calendar

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("calendar: interval start after end")

// Midnight strips the time-of-day component. Every comparison in this package
// happens at day granularity in UTC; callers must not bypass this helper.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// Interval is a day-granularity date range with an explicit inclusivity
// policy. Stays are end-exclusive (a guest checking out on day D does not
// occupy day D); blocked spans are end-inclusive (every listed day is taken).
type Interval struct {
	Start        time.Time
	End          time.Time
	EndInclusive bool
}

// NewStay builds an end-exclusive [check-in, check-out) interval.
func NewStay(checkIn, checkOut time.Time) (Interval, error) {
	start, end := Midnight(checkIn), Midnight(checkOut)
	if start.After(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// NewDay builds an end-inclusive interval covering a single day.
func NewDay(date time.Time) Interval {
	d := Midnight(date)
	return Interval{Start: d, End: d, EndInclusive: true}
}

// NewDaySpan builds an end-inclusive interval covering every day between
// start and end.
func NewDaySpan(start, end time.Time) (Interval, error) {
	s, e := Midnight(start), Midnight(end)
	if s.After(e) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: s, End: e, EndInclusive: true}, nil
}

// Contains reports whether the given date falls inside the interval under its
// own inclusivity rule.
func (i Interval) Contains(date time.Time) bool {
	d := Midnight(date)
	if d.Before(i.Start) {
		return false
	}
	if i.EndInclusive {
		return !d.After(i.End)
	}
	return d.Before(i.End)
}

// Overlaps reports whether any day satisfies both intervals' containment,
// honoring each interval's own inclusivity rule.
func (i Interval) Overlaps(other Interval) bool {
	return !i.lastDay().Before(other.Start) && !other.lastDay().Before(i.Start)
}

// Days enumerates every day the interval occupies, in order. An empty
// end-exclusive interval yields no days.
func (i Interval) Days() []time.Time {
	var days []time.Time
	for d := i.Start; i.Contains(d); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Nights returns the number of nights an end-exclusive stay covers.
func (i Interval) Nights() int {
	return int(i.End.Sub(i.Start).Hours() / 24)
}

// lastDay is the final occupied day, or the day before Start for an empty
// end-exclusive interval.
func (i Interval) lastDay() time.Time {
	if i.EndInclusive {
		return i.End
	}
	return i.End.AddDate(0, 0, -1)
}

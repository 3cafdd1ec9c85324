// Package ical implements the subset of RFC 5545 needed to exchange all-day
// availability events with external calendar platforms. Values are exchanged
// at date granularity: DTSTART/DTEND always use the DATE value type and DTEND
// is exclusive, per the RFC convention for all-day events.
package ical

import (
	"errors"
	"time"
)

var (
	ErrNotCalendar  = errors.New("ical: payload is not a VCALENDAR")
	ErrInvalidEvent = errors.New("ical: event has an invalid date span")
)

const (
	// DefaultProdID identifies this implementation in exported calendars.
	DefaultProdID = "-//staycal//calendar-sync//EN"

	dateLayout  = "20060102"
	stampLayout = "20060102T150405Z"
)

// Event is a single all-day VEVENT. Start is the first occupied day and End
// the exclusive day after the last occupied one, both at UTC midnight.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Days enumerates every day the event occupies.
func (e Event) Days() []time.Time {
	var days []time.Time
	for d := e.Start; d.Before(e.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Calendar is an ordered collection of events plus the calendar-level
// properties external consumers expect.
type Calendar struct {
	ProdID string
	Name   string
	Events []Event
}

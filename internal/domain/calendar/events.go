package calendar

import "time"

type DateBlocked struct {
	PropertyID string
	Date       time.Time
	Source     BlockSource
	At         time.Time
}

func (e DateBlocked) EventName() string     { return "calendar.date_blocked" }
func (e DateBlocked) AggregateID() string   { return e.PropertyID }
func (e DateBlocked) OccurredAt() time.Time { return e.At }

type DateUnblocked struct {
	PropertyID string
	Date       time.Time
	At         time.Time
}

func (e DateUnblocked) EventName() string     { return "calendar.date_unblocked" }
func (e DateUnblocked) AggregateID() string   { return e.PropertyID }
func (e DateUnblocked) OccurredAt() time.Time { return e.At }

type FeedSynced struct {
	PropertyID string
	FeedID     string
	Imported   int
	Skipped    int
	At         time.Time
}

func (e FeedSynced) EventName() string     { return "calendar.feed_synced" }
func (e FeedSynced) AggregateID() string   { return e.PropertyID }
func (e FeedSynced) OccurredAt() time.Time { return e.At }

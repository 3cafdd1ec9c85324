// Package feedsync ingests external iCalendar feeds into blocked dates,
// either from an uploaded file or on a polling schedule.
package feedsync

import (
	"context"
	"log/slog"
	"time"

	"staycal/internal/app/gateway"
	"staycal/internal/ical"
)

// Summary merges decode and insert outcomes. Failed covers both events the
// decoder skipped and dates the gateway rejected; the caller must surface
// the split instead of pretending a clean import.
type Summary struct {
	Succeeded     int `json:"succeeded"`
	Failed        int `json:"failed"`
	SkippedEvents int `json:"skipped_events"`
}

type Importer struct {
	Gateway *gateway.Gateway
	Logger  *slog.Logger
}

// ImportPayload decodes the feed and blocks every day its events cover.
// Multi-day events expand to one blocked date per included day. Only a
// payload that is not a calendar at all fails the import.
func (im *Importer) ImportPayload(ctx context.Context, propertyID string, payload []byte) (Summary, error) {
	cal, stats, err := ical.Decode(payload)
	if err != nil {
		return Summary{}, err
	}
	for _, problem := range stats.Problems {
		if im.Logger != nil {
			im.Logger.Warn("feed event skipped", "property_id", propertyID, "reason", problem)
		}
	}

	var dates []time.Time
	for _, ev := range cal.Events {
		dates = append(dates, ev.Days()...)
	}

	importSummary, err := im.Gateway.BulkImportBlocks(ctx, propertyID, dates)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Succeeded:     importSummary.Succeeded,
		Failed:        importSummary.Failed + stats.Skipped,
		SkippedEvents: stats.Skipped,
	}, nil
}

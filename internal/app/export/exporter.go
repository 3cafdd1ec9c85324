// Package export serializes a property's reconciled calendar state as an
// RFC 5545 feed for external platforms.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"staycal/internal/app/query"
	"staycal/internal/ical"
)

// Uploader publishes a finished feed to object storage; optional.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

type Exporter struct {
	Query    *query.Service
	Uploader Uploader
	Logger   *slog.Logger
}

// Result carries the encoded feed plus the download filename external
// platforms see.
type Result struct {
	Payload   []byte
	Filename  string
	PublicURL string
}

// Export builds one VEVENT per confirmed booking, per blocked date and per
// special price. Encoding failures abort the whole export.
func (e *Exporter) Export(ctx context.Context, propertyID, propertyName string) (Result, error) {
	snap, confirmed, specials, err := e.Query.Snapshot(ctx, propertyID)
	if err != nil {
		return Result{}, err
	}

	name := propertyName
	if name == "" {
		name = propertyID
	}
	cal := ical.Calendar{Name: name}

	for _, b := range confirmed {
		// a stay without nights occupies no days and has no wire form
		if b.Stay.Nights() < 1 {
			continue
		}
		cal.Events = append(cal.Events, ical.Event{
			UID:     fmt.Sprintf("booking-%s@staycal", b.ID),
			Summary: "Reserved",
			Start:   b.Stay.Start,
			End:     b.Stay.End,
		})
	}
	for _, block := range snap.Blocks {
		// single blocked day is end-inclusive; VEVENT DTEND is exclusive,
		// so the event ends the day after
		cal.Events = append(cal.Events, ical.Event{
			UID:     fmt.Sprintf("block-%s-%s@staycal", propertyID, block.Date.Format("20060102")),
			Summary: "Blocked",
			Start:   block.Date,
			End:     block.Date.AddDate(0, 0, 1),
		})
	}
	for _, sp := range specials {
		cal.Events = append(cal.Events, ical.Event{
			UID:     fmt.Sprintf("price-%s-%s@staycal", propertyID, sp.Date.Format("20060102")),
			Summary: fmt.Sprintf("Special price %s", sp.Price),
			Start:   sp.Date,
			End:     sp.Date.AddDate(0, 0, 1),
		})
	}

	payload, err := ical.Encode(cal)
	if err != nil {
		return Result{}, fmt.Errorf("export property %s: %w", propertyID, err)
	}

	result := Result{Payload: payload, Filename: Filename(name)}
	if e.Uploader != nil {
		url, err := e.Uploader.Upload(ctx, "feeds/"+result.Filename, bytes.NewReader(payload), "text/calendar")
		if err != nil {
			// publishing the snapshot is best effort, the download still works
			if e.Logger != nil {
				e.Logger.Warn("feed snapshot upload failed", "property_id", propertyID, "error", err)
			}
		} else {
			result.PublicURL = url
		}
	}
	return result, nil
}

// Filename derives the download name, matching the established
// "{property_name}_calendario.ics" convention.
func Filename(propertyName string) string {
	name := strings.TrimSpace(propertyName)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = "property"
	}
	return name + "_calendario.ics"
}

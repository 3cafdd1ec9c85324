package ical

import (
	"fmt"
	"strings"
	"time"
)

// DecodeStats reports what a tolerant decode did with the payload. Individual
// malformed events are skipped, never fatal; callers surface the counts.
type DecodeStats struct {
	Parsed  int
	Skipped int
	// Problems holds one human-readable reason per skipped event.
	Problems []string
}

// Decode parses an RFC 5545 payload into all-day events. Timezones and
// time-of-day are deliberately ignored: blocking happens at day granularity,
// so only the date portion of DTSTART/DTEND is kept. The decode fails only
// when the payload is not a calendar at all.
func Decode(data []byte) (Calendar, DecodeStats, error) {
	lines := unfold(string(data))
	if !containsCalendar(lines) {
		return Calendar{}, DecodeStats{}, ErrNotCalendar
	}

	var (
		cal     Calendar
		stats   DecodeStats
		inCal   bool
		inEvent bool
		current map[string]string
	)

	finalize := func() {
		ev, err := eventFromProps(current)
		if err != nil {
			stats.Skipped++
			stats.Problems = append(stats.Problems, err.Error())
			return
		}
		cal.Events = append(cal.Events, ev)
		stats.Parsed++
	}

	for _, line := range lines {
		name, _, value, ok := splitProperty(line)
		if !ok {
			continue
		}
		switch {
		case name == "BEGIN" && strings.EqualFold(value, "VCALENDAR"):
			inCal = true
		case name == "END" && strings.EqualFold(value, "VCALENDAR"):
			inCal = false
		case name == "BEGIN" && strings.EqualFold(value, "VEVENT"):
			if !inCal {
				continue
			}
			inEvent = true
			current = map[string]string{}
		case name == "END" && strings.EqualFold(value, "VEVENT"):
			if !inEvent {
				continue
			}
			inEvent = false
			finalize()
		case inEvent:
			// last occurrence wins, matching lenient real-world parsers
			current[name] = value
		case name == "PRODID":
			cal.ProdID = value
		case name == "X-WR-CALNAME":
			cal.Name = unescapeText(value)
		}
	}

	return cal, stats, nil
}

func containsCalendar(lines []string) bool {
	for _, line := range lines {
		if strings.EqualFold(strings.TrimSpace(line), "BEGIN:VCALENDAR") {
			return true
		}
	}
	return false
}

func eventFromProps(props map[string]string) (Event, error) {
	rawStart, ok := props["DTSTART"]
	if !ok {
		return Event{}, fmt.Errorf("event %q: missing DTSTART", props["UID"])
	}
	start, err := parseDate(rawStart)
	if err != nil {
		return Event{}, fmt.Errorf("event %q: bad DTSTART %q", props["UID"], rawStart)
	}
	end := start.AddDate(0, 0, 1)
	if rawEnd, ok := props["DTEND"]; ok {
		e, err := parseDate(rawEnd)
		if err != nil {
			return Event{}, fmt.Errorf("event %q: bad DTEND %q", props["UID"], rawEnd)
		}
		if e.After(start) {
			end = e
		}
	}
	return Event{
		UID:         unescapeText(props["UID"]),
		Summary:     unescapeText(props["SUMMARY"]),
		Description: unescapeText(props["DESCRIPTION"]),
		Start:       start,
		End:         end,
	}, nil
}

// parseDate accepts DATE ("20240801") and DATE-TIME ("20240801T153000Z")
// values, keeping only the date portion.
func parseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if idx := strings.IndexByte(v, 'T'); idx >= 0 {
		v = v[:idx]
	}
	return time.ParseInLocation(dateLayout, v, time.UTC)
}

// unfold joins RFC 5545 folded lines: any line starting with a space or tab
// continues the previous one. Accepts both CRLF and bare LF input.
func unfold(data string) []string {
	raw := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var lines []string
	for _, line := range raw {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitProperty breaks "NAME;PARAM=X:value" into its parts. Property names
// and parameters are case-insensitive; names are returned upper-cased.
func splitProperty(line string) (name, params, value string, ok bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return "", "", "", false
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", "", false
	}
	head, value := line[:colon], line[colon+1:]
	if semi := strings.IndexByte(head, ';'); semi >= 0 {
		params = head[semi+1:]
		head = head[:semi]
	}
	return strings.ToUpper(strings.TrimSpace(head)), params, value, true
}

func unescapeText(s string) string {
	r := strings.NewReplacer(
		"\\\\", "\\",
		"\\;", ";",
		"\\,", ",",
		"\\n", "\n",
		"\\N", "\n",
	)
	return r.Replace(s)
}

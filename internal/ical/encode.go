package ical

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const foldLimit = 75

// Encode serializes the calendar as an RFC 5545 document with CRLF line
// endings and 75-octet folding. Any invalid event aborts the whole encode:
// a partial calendar file is worse than none for sync consumers.
func Encode(cal Calendar) ([]byte, error) {
	return EncodeAt(cal, time.Now().UTC())
}

// EncodeAt is Encode with an explicit DTSTAMP instant, used by tests to pin
// output byte-for-byte.
func EncodeAt(cal Calendar, stamp time.Time) ([]byte, error) {
	prodID := cal.ProdID
	if prodID == "" {
		prodID = DefaultProdID
	}

	var buf bytes.Buffer
	writeLine(&buf, "BEGIN:VCALENDAR")
	writeLine(&buf, "VERSION:2.0")
	writeLine(&buf, "PRODID:"+prodID)
	writeLine(&buf, "CALSCALE:GREGORIAN")
	if cal.Name != "" {
		writeLine(&buf, "X-WR-CALNAME:"+escapeText(cal.Name))
	}

	dtstamp := stamp.UTC().Format(stampLayout)
	for _, ev := range cal.Events {
		if ev.UID == "" {
			return nil, fmt.Errorf("%w: missing uid", ErrInvalidEvent)
		}
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("%w: uid %s", ErrInvalidEvent, ev.UID)
		}
		writeLine(&buf, "BEGIN:VEVENT")
		writeLine(&buf, "UID:"+escapeText(ev.UID))
		writeLine(&buf, "DTSTAMP:"+dtstamp)
		writeLine(&buf, "DTSTART;VALUE=DATE:"+ev.Start.Format(dateLayout))
		writeLine(&buf, "DTEND;VALUE=DATE:"+ev.End.Format(dateLayout))
		writeLine(&buf, "SUMMARY:"+escapeText(ev.Summary))
		if ev.Description != "" {
			writeLine(&buf, "DESCRIPTION:"+escapeText(ev.Description))
		}
		writeLine(&buf, "END:VEVENT")
	}
	writeLine(&buf, "END:VCALENDAR")
	return buf.Bytes(), nil
}

// writeLine folds content lines longer than 75 octets using CRLF plus a
// single space, splitting on byte boundaries as the RFC permits for ASCII
// content (all property names and dates here are ASCII; text values may fold
// mid-rune only when multi-byte, which consumers must already unfold).
func writeLine(buf *bytes.Buffer, line string) {
	limit := foldLimit
	for len(line) > limit {
		cut := limit
		// avoid splitting a UTF-8 sequence
		for cut > 1 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		// the fold space counts against the limit of every continuation line
		limit = foldLimit - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

// escapeText applies RFC 5545 TEXT escaping.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\r", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

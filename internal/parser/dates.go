package parser

import (
	"strings"
	"time"

	"newsdesk/internal/logger"
)

// Feed timestamp layouts, most common first.
var timestampLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// rfc822Zones holds the named zones RFC 822 defines. time.Parse reads an
// unknown abbreviation as UTC and rejects "UT", so these are rewritten to
// numeric offsets before parsing.
var rfc822Zones = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// ParseTimestamp parses an RFC 822 style feed date into UTC.
// It returns nil for empty or unparseable input and logs the failure;
// a missing date never aborts ingestion of an entry.
func ParseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	value = numericZone(value)

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}

	logger.Warn("Failed to parse date", "value", value)
	return nil
}

// numericZone replaces a trailing RFC 822 zone name with its offset.
func numericZone(value string) string {
	i := strings.LastIndexByte(value, ' ')
	if i < 0 {
		return value
	}
	if offset, ok := rfc822Zones[strings.ToUpper(value[i+1:])]; ok {
		return value[:i+1] + offset
	}
	return value
}

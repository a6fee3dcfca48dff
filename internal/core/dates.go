package core

import (
	"strings"
	"time"
)

// Layouts with an explicit offset describe an instant; it is converted to
// the ledger's location before the calendar date is taken.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without an offset are calendar dates in the ledger's location.
var localLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02T15:04:05",
	"2006年1月2日",
}

// ParseDate parses a ledger date cell in loc. It reports false when no
// known layout matches; callers treat such rows as matching no period.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

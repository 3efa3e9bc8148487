package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// NowUTC returns current time in UTC, truncated to what DATETIME(3) stores.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ParseTravelDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseTravelDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(layoutDate, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDate formats time to YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS UTC"; nil prints as "-".
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(layoutDateTime) + " UTC"
}

package codec

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Storage layouts. Both are UTC and never used for display.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// FormatTimestamp renders t in UTC at second precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", types.ErrInvalidData, s)
	}
	return t, nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a stored date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", types.ErrInvalidData, s)
	}
	return t, nil
}

// NullTimestamp maps nil to NULL.
func NullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTimestamp(*t)
}

// NullDate maps nil to NULL.
func NullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatDate(*t)
}

// NullBlob maps nil and empty slices to NULL so absence has one encoding.
func NullBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

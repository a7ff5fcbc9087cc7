package common

import "time"

// DateTimeLayout is the wire format for meeting and forecast timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// FormatDateTime renders t in the wire format, keeping t's own zone.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDateTime parses a wire-format timestamp as local wall-clock time.
func ParseDateTime(s string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, time.Local)
}

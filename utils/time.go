package utils

import (
	"fmt"
	"time"
)

// NormalizeUTC validates a timestamp before it is persisted and converts it
// to UTC. A zero timestamp is a programming error (the caller lost the real
// value somewhere) and is rejected rather than silently stored.
func NormalizeUTC(t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("refusing to store zero timestamp: a real, timezone-aware time is required")
	}
	return t.UTC(), nil
}

// FormatUTC renders a timestamp for storage. The timestamp must already have
// passed NormalizeUTC.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseUTC reads a stored timestamp back as aware UTC.
func ParseUTC(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

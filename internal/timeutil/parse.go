// Package timeutil parses the time arguments accepted by pilotdeck commands.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativePattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

var unitDurations = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// absoluteLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var absoluteLayouts = []struct {
	layout  string
	hasZone bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{time.DateTime, false},
	{"2006-01-02 15:04:05.999", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{time.DateOnly, false},
}

// ParseSince parses a --since value relative to now. It accepts a relative
// age ("30m", "2h", "3d", "1w") or an absolute timestamp (RFC3339,
// "2006-01-02 15:04:05", "2006-01-02"). Timestamps without a zone are
// interpreted in loc. The result is in UTC, truncated to milliseconds.
func ParseSince(value string, now time.Time, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("--since must not be empty")
	}
	if loc == nil {
		loc = time.Local
	}

	if match := relativePattern.FindStringSubmatch(value); match != nil {
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number in --since: %w", err)
		}
		ts := now.Add(-time.Duration(amount) * unitDurations[match[2]])
		return ts.UTC().Truncate(time.Millisecond), nil
	}

	for _, f := range absoluteLayouts {
		var ts time.Time
		var err error
		if f.hasZone {
			ts, err = time.Parse(f.layout, value)
		} else {
			ts, err = time.ParseInLocation(f.layout, value, loc)
		}
		if err == nil {
			return ts.UTC().Truncate(time.Millisecond), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid --since format: '%s'. Use relative time ('w|d|h|m|s') or absolute (e.g., '2006-01-02 15:04:05', '2006-01-02T15:04:05Z', '2006-01-02')", value)
}

// FormatRelative renders how long ago ts was, e.g. "42s ago", "3h ago".
// Zero times render as "-".
func FormatRelative(ts, now time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	d := now.Sub(ts)
	switch {
	case d < 0:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

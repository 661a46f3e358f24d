package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pst := time.FixedZone("TestLocal", -8*3600)

	tcs := []struct {
		name        string
		input       string
		expected    time.Time
		expectedErr string
	}{
		{
			name:     "seconds",
			input:    "45s",
			expected: now.Add(-45 * time.Second),
		},
		{
			name:     "hours",
			input:    "2h",
			expected: now.Add(-2 * time.Hour),
		},
		{
			name:     "days",
			input:    "3d",
			expected: now.Add(-72 * time.Hour),
		},
		{
			name:     "weeks",
			input:    "1w",
			expected: now.Add(-7 * 24 * time.Hour),
		},
		{
			name:     "RFC3339 with offset",
			input:    "2026-02-15T10:30:00-05:00",
			expected: time.Date(2026, 2, 15, 15, 30, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339Nano truncated to millis",
			input:    "2026-02-15T10:30:00.123456789Z",
			expected: time.Date(2026, 2, 15, 10, 30, 0, 123_000_000, time.UTC),
		},
		{
			name:     "datetime in local zone",
			input:    "2026-02-15 10:30:00",
			expected: time.Date(2026, 2, 15, 18, 30, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			input:    "2026-02-15",
			expected: time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "surrounding whitespace",
			input:    "  30m ",
			expected: now.Add(-30 * time.Minute),
		},
		{
			name:        "empty",
			input:       "",
			expectedErr: "must not be empty",
		},
		{
			name:        "unknown unit",
			input:       "5y",
			expectedErr: "invalid --since format",
		},
		{
			name:        "garbage",
			input:       "yesterday",
			expectedErr: "invalid --since format",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSince(tc.input, now, pst)
			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "expected %s, got %s", tc.expected, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tcs := []struct {
		ts       time.Time
		expected string
	}{
		{time.Time{}, "-"},
		{now.Add(time.Minute), "just now"},
		{now.Add(-42 * time.Second), "42s ago"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
	}

	for _, tc := range tcs {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatRelative(tc.ts, now))
		})
	}
}

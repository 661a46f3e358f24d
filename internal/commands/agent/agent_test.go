package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestValidateRunFilters(t *testing.T) {
	tcs := []struct {
		name    string
		filters api.AgentRunFilters
		wantErr string
	}{
		{name: "defaults", filters: api.AgentRunFilters{Limit: 50}},
		{name: "known status", filters: api.AgentRunFilters{Limit: 1, Status: api.AgentRunFailed}},
		{name: "unknown status", filters: api.AgentRunFilters{Limit: 1, Status: "paused"}, wantErr: "invalid --status"},
		{name: "limit too high", filters: api.AgentRunFilters{Limit: 501}, wantErr: "between 1 and 500"},
		{name: "negative offset", filters: api.AgentRunFilters{Limit: 5, Offset: -1}, wantErr: "--offset"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRunFilters(tc.filters)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestEventsOptionsResolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("relative since", func(t *testing.T) {
		opts := eventsOptions{since: "2h", filters: api.AgentEventFilters{Limit: 200, Type: "error"}}
		filters, err := opts.resolve(now, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, now.Add(-2*time.Hour), filters.Since)
		assert.Equal(t, "error", filters.Type)
	})

	t.Run("no since", func(t *testing.T) {
		filters, err := eventsOptions{filters: api.AgentEventFilters{Limit: 10}}.resolve(now, time.UTC)
		require.NoError(t, err)
		assert.True(t, filters.Since.IsZero())
	})

	t.Run("bad since", func(t *testing.T) {
		_, err := eventsOptions{since: "yesterday", filters: api.AgentEventFilters{Limit: 10}}.resolve(now, time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since format")
	})

	t.Run("limit bounds", func(t *testing.T) {
		_, err := eventsOptions{filters: api.AgentEventFilters{Limit: 2001}}.resolve(now, time.UTC)
		require.Error(t, err)
	})
}

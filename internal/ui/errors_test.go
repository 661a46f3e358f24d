package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestNewErrorFromAPI(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		wantType ErrorType
	}{
		{
			name:     "missing admin token",
			err:      fmt.Errorf("start deploy: %w", api.ErrAdminTokenMissing),
			wantType: ErrorTypeConfiguration,
		},
		{
			name:     "http error",
			err:      &api.APIError{StatusCode: 500, Message: "push failed"},
			wantType: ErrorTypeAPI,
		},
		{
			name:     "network error",
			err:      fmt.Errorf("%w: dial tcp", api.ErrNetworkUnreachable),
			wantType: ErrorTypeAPI,
		},
		{
			name:     "already categorized",
			err:      NewValidationError(errors.New("bad flag")),
			wantType: ErrorTypeValidation,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			uiErr := NewErrorFromAPI(tc.err)
			assert.Equal(t, tc.wantType, uiErr.Type)
			assert.True(t, uiErr.SuppressUsage)
			assert.False(t, uiErr.SilentExit)
			assert.ErrorIs(t, uiErr, tc.err)
		})
	}
}

func TestNewUserCancelledError(t *testing.T) {
	err := NewUserCancelledError()
	assert.True(t, err.SilentExit)
	assert.Equal(t, "cancelled by user", err.Error())
}

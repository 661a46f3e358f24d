package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUserCancellation(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: fmt.Errorf("fetch deploy log: %w", context.Canceled), want: true},
		{name: "ui cancellation", err: errors.New("cancelled by user"), want: true},
		{name: "operation cancelled", err: errors.New("operation cancelled"), want: true},
		{name: "api failure", err: errors.New("HTTP 500"), want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUserCancellation(tc.err))
		})
	}
}

func TestServerHost(t *testing.T) {
	assert.Equal(t, "localhost:8689", ServerHost("http://localhost:8689/api"))
	assert.Equal(t, "deck.example.com", ServerHost("https://deck.example.com/api"))
	assert.Empty(t, ServerHost("://bad"))
}

package logging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestClassifyError(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{
			name:     "unauthorized response",
			err:      &api.APIError{StatusCode: 401, Message: "Unauthorized"},
			expected: ErrorClassFatal,
		},
		{
			name:     "server without admin token answers 503",
			err:      fmt.Errorf("fetch deploy log: %w", &api.APIError{StatusCode: 503, Message: "Admin token not configured. Set PM_ADMIN_TOKEN in service environment."}),
			expected: ErrorClassFatal,
		},
		{
			name:     "client has no token",
			err:      fmt.Errorf("fetch deploy log: %w", api.ErrAdminTokenMissing),
			expected: ErrorClassFatal,
		},
		{
			name:     "forbidden",
			err:      &api.APIError{StatusCode: 403, Message: "HTTP 403"},
			expected: ErrorClassFatal,
		},
		{
			name:     "bad gateway during restart",
			err:      &api.APIError{StatusCode: 502, Message: "HTTP 502"},
			expected: ErrorClassTransient,
		},
		{
			name:     "service unavailable",
			err:      &api.APIError{StatusCode: 503, Message: "HTTP 503"},
			expected: ErrorClassTransient,
		},
		{
			name:     "gateway timeout",
			err:      &api.APIError{StatusCode: 504, Message: "upstream timed out"},
			expected: ErrorClassTransient,
		},
		{
			name:     "network unreachable",
			err:      fmt.Errorf("fetch deploy status: %w", fmt.Errorf("%w: dial tcp: connection refused", api.ErrNetworkUnreachable)),
			expected: ErrorClassTransient,
		},
		{
			name:     "request timeout",
			err:      fmt.Errorf("fetch deploy log: %w", context.DeadlineExceeded),
			expected: ErrorClassTransient,
		},
		{
			name:     "plain text gateway error",
			err:      errors.New("HTTP 503 Service Unavailable"),
			expected: ErrorClassTransient,
		},
		{
			name:     "plain text unauthorized",
			err:      errors.New("Unauthorized"),
			expected: ErrorClassFatal,
		},
		{
			name:     "internal server error is unknown",
			err:      &api.APIError{StatusCode: 500, Message: "stores not configured"},
			expected: ErrorClassUnknown,
		},
		{
			name:     "parse failure is unknown",
			err:      errors.New("failed to parse deploy log response: unexpected end of JSON input"),
			expected: ErrorClassUnknown,
		},
		{
			name:     "nil",
			err:      nil,
			expected: ErrorClassUnknown,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyError(tc.err))
		})
	}
}

func TestFailureHint(t *testing.T) {
	tcs := []struct {
		name     string
		log      string
		expected string
	}{
		{
			name:     "rebase refused",
			log:      "Pulling...\nerror: cannot pull with rebase: You have unstaged changes.\n",
			expected: failureSignatures[0].hint,
		},
		{
			name:     "unstaged changes only",
			log:      "You have unstaged changes.",
			expected: failureSignatures[0].hint,
		},
		{
			name:     "unrelated failure",
			log:      "pip install failed",
			expected: DefaultFailureHint,
		},
		{
			name:     "empty log",
			log:      "",
			expected: DefaultFailureHint,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FailureHint(tc.log))
		})
	}
}

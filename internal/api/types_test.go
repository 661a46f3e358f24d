package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, PriorityLow.Rank(), ProjectPriority("someday").Rank())
}

func TestDeployJobState_Normalize(t *testing.T) {
	tcs := []struct {
		in       DeployJobState
		expected DeployJobState
	}{
		{in: "running", expected: DeployStateRunning},
		{in: " SUCCESS ", expected: DeployStateSuccess},
		{in: "failed", expected: DeployStateFailed},
		{in: "unknown", expected: DeployStateUnknown},
		{in: "", expected: DeployStateUnknown},
		{in: "restarting", expected: DeployStateUnknown},
	}

	for _, tc := range tcs {
		t.Run(string(tc.in), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.in.Normalize())
		})
	}
}

func TestNullableTime_UnmarshalJSON(t *testing.T) {
	tcs := []struct {
		name      string
		input     string
		expectErr bool
		isZero    bool
	}{
		{name: "null", input: `null`, isZero: true},
		{name: "empty string", input: `""`, isZero: true},
		{name: "rfc3339", input: `"2026-03-01T12:00:00Z"`},
		{name: "offset with fraction", input: `"2026-03-01T12:00:00.123456+08:00"`},
		{name: "naive isoformat", input: `"2026-03-01T12:00:00.123456"`},
		{name: "garbage", input: `"yesterday"`, expectErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var nt NullableTime
			err := json.Unmarshal([]byte(tc.input), &nt)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.isZero, nt.IsZero())
		})
	}
}

func TestAPIError(t *testing.T) {
	exit := 2
	err := &APIError{StatusCode: 409, Message: "pull failed", ExitCode: &exit}
	assert.Equal(t, "pull failed (exit 2)", err.Error())

	noExit := &APIError{StatusCode: 502, Message: "HTTP 502"}
	assert.Equal(t, "HTTP 502", noExit.Error())
}

func TestAPIError_OutputTail(t *testing.T) {
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = "line"
	}
	lines[149] = "last"
	lines[50] = "first-kept"

	err := &APIError{Output: strings.Join(lines, "\n") + "\n\n"}
	tail := err.OutputTail(100)

	got := strings.Split(tail, "\n")
	assert.Len(t, got, 100)
	assert.Equal(t, "first-kept", got[0])
	assert.Equal(t, "last", got[99])

	assert.Empty(t, (&APIError{}).OutputTail(100))
}

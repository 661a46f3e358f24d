package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetworkUnreachable wraps transport failures where no response arrived
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrAdminTokenMissing is returned before any request is made when an
	// admin endpoint is called without a configured token
	ErrAdminTokenMissing = errors.New("admin token not configured: set PM_ADMIN_TOKEN or run 'pilotdeck config set admin-token <token>'")
)

// APIError is a non-2xx response from the PilotDeck server
type APIError struct {
	StatusCode int
	Message    string
	Output     string // Script output for admin git/deploy endpoints
	ExitCode   *int
}

func (e *APIError) Error() string {
	if e.ExitCode != nil && *e.ExitCode != 0 {
		return fmt.Sprintf("%s (exit %d)", e.Message, *e.ExitCode)
	}
	return e.Message
}

// OutputTail returns the last n lines of the script output, trimmed
func (e *APIError) OutputTail(n int) string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return ""
	}
	lines := strings.Split(out, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// newAPIError builds an APIError from a response body. The message is the
// server's error or message field, falling back to "HTTP <status>".
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var errResp ErrorResponse
	if err := unmarshal(body, &errResp); err == nil {
		apiErr.Output = errResp.Output
		apiErr.ExitCode = errResp.ExitCode
		switch {
		case errResp.Error != "":
			apiErr.Message = errResp.Error
		case errResp.Message != "":
			apiErr.Message = errResp.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return apiErr
}

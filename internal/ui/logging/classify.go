package logging

import (
	"context"
	"errors"
	"strings"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// ErrorClass decides what the poller does with a failed fetch
type ErrorClass int

const (
	// ErrorClassUnknown errors are retried with backoff and reported as warnings
	ErrorClassUnknown ErrorClass = iota
	// ErrorClassTransient errors are expected while the server restarts
	ErrorClassTransient
	// ErrorClassFatal errors stop polling
	ErrorClassFatal
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassTransient:
		return "transient"
	case ErrorClassFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ClassificationVersion identifies the rule tables below. Bump it when a rule
// is added or changed so logs show which heuristics were in effect.
const ClassificationVersion = 2

type errorRule struct {
	name  string
	match func(err error, msg string) bool
	class ErrorClass
}

// errorRules are checked in order and the first match wins. Fatal rules come
// first: the server answers 503 "Admin token not configured" when it has no
// token of its own, and retrying that would never succeed.
var errorRules = []errorRule{
	{name: "unauthorized", match: messageEquals("unauthorized"), class: ErrorClassFatal},
	{name: "admin-token-not-configured", match: messageContains("admin token not configured"), class: ErrorClassFatal},
	{name: "client-token-missing", match: isError(api.ErrAdminTokenMissing), class: ErrorClassFatal},
	{name: "http-auth", match: statusIn(401, 403), class: ErrorClassFatal},
	{name: "http-gateway", match: statusIn(502, 503, 504), class: ErrorClassTransient},
	{name: "network-unreachable", match: isError(api.ErrNetworkUnreachable), class: ErrorClassTransient},
	{name: "request-timeout", match: isError(context.DeadlineExceeded), class: ErrorClassTransient},
	{name: "http-gateway-text", match: messagePrefix("http 502", "http 503", "http 504"), class: ErrorClassTransient},
	{name: "network-text", match: messageContains("network unreachable", "failed to fetch", "connection refused"), class: ErrorClassTransient},
}

// ClassifyError maps a fetch error onto an ErrorClass
func ClassifyError(err error) ErrorClass {
	class, _ := classify(err)
	return class
}

func classify(err error) (ErrorClass, string) {
	if err == nil {
		return ErrorClassUnknown, ""
	}

	msg := errorMessage(err)
	for _, rule := range errorRules {
		if rule.match(err, msg) {
			return rule.class, rule.name
		}
	}
	return ErrorClassUnknown, ""
}

// errorMessage prefers the server's message over the wrapped error chain
func errorMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return strings.ToLower(strings.TrimSpace(apiErr.Message))
	}
	return strings.ToLower(strings.TrimSpace(err.Error()))
}

func messageEquals(want string) func(error, string) bool {
	return func(_ error, msg string) bool { return msg == want }
}

func messagePrefix(prefixes ...string) func(error, string) bool {
	return func(_ error, msg string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(msg, p) {
				return true
			}
		}
		return false
	}
}

func messageContains(needles ...string) func(error, string) bool {
	return func(_ error, msg string) bool {
		for _, n := range needles {
			if strings.Contains(msg, n) {
				return true
			}
		}
		return false
	}
}

func isError(target error) func(error, string) bool {
	return func(err error, _ string) bool { return errors.Is(err, target) }
}

func statusIn(codes ...int) func(error, string) bool {
	return func(err error, _ string) bool {
		var apiErr *api.APIError
		if !errors.As(err, &apiErr) {
			return false
		}
		for _, c := range codes {
			if apiErr.StatusCode == c {
				return true
			}
		}
		return false
	}
}

// DefaultFailureHint is shown for a failed deploy whose log matches no known signature
const DefaultFailureHint = "Deploy finished: failed. Check the end of the log for the error."

type failureSignature struct {
	name     string
	patterns []string // any one matching selects the hint
	hint     string
}

var failureSignatures = []failureSignature{
	{
		name:     "dirty-worktree",
		patterns: []string{"cannot pull with rebase", "You have unstaged changes"},
		hint:     "Deploy failed: the server's repository has uncommitted changes, so git pull --rebase cannot run. Commit or stash them on the server and try again.",
	},
}

// FailureHint explains a failed deploy from its log text
func FailureHint(logText string) string {
	for _, sig := range failureSignatures {
		for _, p := range sig.patterns {
			if strings.Contains(logText, p) {
				return sig.hint
			}
		}
	}
	return DefaultFailureHint
}

// Package logsetup configures the process-wide slog logger for the pilotdeck CLI.
package logsetup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-isatty"
)

// Options controls where log output goes.
type Options struct {
	// Interactive is true while a Bubbletea UI owns the terminal.
	Interactive bool
	Level       slog.Level

	// Dir receives the debug log file in interactive mode. Default: os.TempDir()
	Dir string
	// Stderr is the fallback destination. Default: os.Stderr
	Stderr *os.File
}

// Setup installs the global slog logger and returns the debug log file path,
// or "" when logging goes to stderr.
//
// An interactive session whose stderr is still a terminal logs to
// <Dir>/pilotdeck-debug-<timestamp>.log so log lines never tear the TUI.
// Anything else logs to stderr, which keeps `2>` redirection working.
func Setup(opts Options) (string, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var output io.Writer = stderr
	var logFilePath string

	if opts.Interactive && isatty.IsTerminal(stderr.Fd()) {
		dir := opts.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		logFilePath = filepath.Join(dir, DebugLogFileName(time.Now()))

		logFile, err := os.OpenFile(logFilePath, //nolint:gosec // Log file in temp directory
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return "", fmt.Errorf("open debug log: %w", err)
		}
		output = logFile
	}

	slog.SetDefault(slog.New(newHandler(output, opts.Level)))

	return logFilePath, nil
}

// DebugLogFileName is the name of the interactive debug log started at ts.
func DebugLogFileName(ts time.Time) string {
	return fmt.Sprintf("pilotdeck-debug-%s.log", ts.Format("2006-01-02T15-04-05"))
}

// Disable discards all log output. Used when --verbose is not set.
func Disable() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	})))
}

// SetupForTesting routes slog to w for the duration of the test.
//
//	var buf bytes.Buffer
//	logsetup.SetupForTesting(t, &buf, slog.LevelDebug)
//	runCode()
//	assert.Contains(t, buf.String(), "expected log message")
func SetupForTesting(t *testing.T, w io.Writer, level slog.Level) {
	t.Helper()

	originalLogger := slog.Default()
	slog.SetDefault(slog.New(newHandler(w, level)))

	t.Cleanup(func() {
		slog.SetDefault(originalLogger)
	})
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSecrets,
	})
}

// redactSecrets masks attributes whose key names a credential.
func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	if strings.Contains(key, "token") || strings.Contains(key, "secret") {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

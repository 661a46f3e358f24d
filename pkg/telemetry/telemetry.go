// Package telemetry reports crashes and unexpected failures of the pilotdeck
// CLI to Bugsnag. Reporting is off unless an API key was compiled in, and the
// user can opt out with `pilotdeck config set telemetry false` or
// PILOTDECK_TELEMETRY_DISABLED.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/bugsnag/bugsnag-go/v2"

	"github.com/pilotdeck/pilotdeck/internal/version"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// Build-time variables that can be set via ldflags
// Example: go build -ldflags "-X github.com/pilotdeck/pilotdeck/pkg/telemetry.APIKey=your-key"
var (
	// APIKey is the Bugsnag API key. Reporting is disabled when empty.
	APIKey = ""

	// DefaultReleaseStage is reported when PILOTDECK_ENV is unset.
	DefaultReleaseStage = "prod"
)

var (
	initOnce sync.Once
	enabled  bool
)

// Initialize configures the Bugsnag client once per process. It is safe to
// call repeatedly; every Notify function calls it lazily.
func Initialize() {
	initOnce.Do(func() {
		apiKey := APIKey
		if envKey := os.Getenv("BUGSNAG_API_KEY"); envKey != "" {
			apiKey = envKey
		}
		if apiKey == "" {
			return
		}

		cfg, _ := config.Load() // Ignore error - proceed with defaults if config unavailable
		if cfg != nil && !cfg.IsTelemetryEnabled() {
			return
		}

		releaseStage := os.Getenv("PILOTDECK_ENV")
		if releaseStage == "" {
			releaseStage = DefaultReleaseStage
		}

		appVersion := version.Version
		if appVersion == "" {
			appVersion = "dev"
		}

		bugsnag.Configure(bugsnag.Configuration{
			APIKey:              apiKey,
			ReleaseStage:        releaseStage,
			AppVersion:          appVersion,
			AppType:             "cli",
			ProjectPackages:     []string{"main", "github.com/pilotdeck/pilotdeck"},
			NotifyReleaseStages: []string{"prod", "dev", "local"},
			PanicHandler:        func() {}, // Panics are reported by NotifyOnPanic
			Synchronous:         false,
		})

		addSystemMetadata()
		if cfg != nil {
			addServerMetadata(cfg.GetAPIBaseURL())
		}
		enabled = true
	})
}

// IsEnabled reports whether errors are actually sent.
func IsEnabled() bool {
	Initialize()
	return enabled
}

func addSystemMetadata() {
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("system", "os_type", runtime.GOOS)
		event.MetaData.Add("system", "os_arch", runtime.GOARCH)
		event.MetaData.Add("system", "go_version", runtime.Version())
		return nil
	})
}

// addServerMetadata records which backend the CLI talked to. Only the host is
// sent; tokens never leave the machine.
func addServerMetadata(baseURL string) {
	host := ServerHost(baseURL)
	if host == "" {
		return
	}
	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("server", "host", host)
		return nil
	})
}

// ServerHost returns the host[:port] of an API base URL, or "" if it does not parse.
func ServerHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// NotifyError reports a failure that needs attention.
func NotifyError(ctx context.Context, err error) {
	Notify(ctx, err, bugsnag.SeverityError)
}

// NotifyWarning reports a recoverable or degraded condition.
func NotifyWarning(ctx context.Context, err error) {
	Notify(ctx, err, bugsnag.SeverityWarning)
}

// Notify reports err with the given bugsnag severity. User cancellations are
// never reported.
func Notify(ctx context.Context, err error, severity interface{}) {
	NotifyWithMetadata(ctx, err, severity, nil)
}

// NotifyWithMetadata reports err with extra metadata tabs.
func NotifyWithMetadata(ctx context.Context, err error, severity interface{}, metadata bugsnag.MetaData) {
	if err == nil || IsUserCancellation(err) || !IsEnabled() {
		return
	}

	rawData := []interface{}{ctx, severity}
	if metadata != nil {
		rawData = append(rawData, metadata)
	}
	_ = bugsnag.Notify(err, rawData...)
}

// NotifyOnPanic reports a panic and re-panics. Defer it at the top of main.
func NotifyOnPanic(ctx context.Context) {
	if r := recover(); r != nil {
		var err error
		switch x := r.(type) {
		case string:
			err = fmt.Errorf("panic: %s", x)
		case error:
			err = fmt.Errorf("panic: %w", x)
		default:
			err = fmt.Errorf("panic: %v", r)
		}

		NotifyError(ctx, err)
		panic(r)
	}
}

// SetCommandContext attaches the running command to every report.
func SetCommandContext(command string, args []string) {
	if !IsEnabled() {
		return
	}

	bugsnag.OnBeforeNotify(func(event *bugsnag.Event, _ *bugsnag.Configuration) error {
		event.MetaData.Add("command", "name", command)
		if len(args) > 0 {
			event.MetaData.Add("command", "args", strings.Join(args, " "))
		}
		return nil
	})
}

// IsUserCancellation identifies errors caused by the user stopping the CLI.
func IsUserCancellation(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") ||
		strings.Contains(errStr, "operation cancelled") ||
		strings.Contains(errStr, "cancelled by user")
}

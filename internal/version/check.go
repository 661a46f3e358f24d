package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

const (
	// Cache file for the release check, relative to the home directory
	versionCacheFile = ".pilotdeck/version_cache.json"

	// Only hit the releases endpoint once per day
	cacheDuration = 24 * time.Hour
)

// VersionCache stores the cached version check result
type VersionCache struct {
	LatestVersion string    `json:"latestVersion"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// Release is the subset of a GitHub release response we read
type Release struct {
	TagName string `json:"tag_name"` // e.g., "v0.4.1"
	HTMLURL string `json:"html_url"`
}

// Checker looks up the latest published release and compares it with the
// running binary.
type Checker struct {
	ReleasesURL    string
	CurrentVersion string // Default: Version
	CachePath      string // Default: ~/.pilotdeck/version_cache.json, "-" disables caching
	HTTPClient     *http.Client
	Now            func() time.Time
}

// NewChecker returns a Checker for releasesURL with the default cache location.
func NewChecker(releasesURL string) *Checker {
	return &Checker{ReleasesURL: releasesURL}
}

// CheckForUpdate reports the latest release and whether it is newer than the
// running version. Lookup failures are swallowed: an unreachable releases
// endpoint never fails a command.
func (c *Checker) CheckForUpdate(ctx context.Context) (latestVersion string, updateAvailable bool, err error) {
	current := c.currentVersion()
	if current == "dev" || c.ReleasesURL == "" {
		return "", false, nil
	}

	if cached, ok := c.getCachedVersion(); ok {
		return compareVersions(current, cached)
	}

	latest, err := c.fetchLatestVersion(ctx)
	if err != nil {
		slog.Debug("Release check failed", "url", c.ReleasesURL, "error", err)
		//nolint:nilerr
		return "", false, nil
	}

	c.cacheVersion(latest)

	return compareVersions(current, latest)
}

func (c *Checker) currentVersion() string {
	if c.CurrentVersion != "" {
		return c.CurrentVersion
	}
	return Version
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// compareVersions compares the running version with latest
func compareVersions(currentVersion, latestVersion string) (string, bool, error) {
	current, err := version.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid current version: %w", err)
	}

	latest, err := version.NewVersion(strings.TrimPrefix(latestVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid latest version: %w", err)
	}

	return latestVersion, latest.GreaterThan(current), nil
}

func (c *Checker) fetchLatestVersion(ctx context.Context) (string, error) {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReleasesURL, nil)
	if err != nil {
		return "", err
	}
	// GitHub rejects requests without a User-Agent
	req.Header.Set("User-Agent", "pilotdeck-cli")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Deferred close, error not actionable
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release response has no tag_name")
	}

	return release.TagName, nil
}

func (c *Checker) cachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "-"
	}
	return filepath.Join(homeDir, versionCacheFile)
}

func (c *Checker) getCachedVersion() (string, bool) {
	path := c.cachePath()
	if path == "-" {
		return "", false
	}

	data, err := os.ReadFile(path) //nolint:gosec // Cache file in user's home directory
	if err != nil {
		return "", false
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return "", false
	}

	if c.now().Sub(cache.CheckedAt) > cacheDuration {
		return "", false
	}

	return cache.LatestVersion, true
}

func (c *Checker) cacheVersion(latestVersion string) {
	path := c.cachePath()
	if path == "-" {
		return
	}

	//nolint:errcheck,gosec // Best effort directory creation, error not actionable
	os.MkdirAll(filepath.Dir(path), 0o755)

	data, err := json.Marshal(VersionCache{
		LatestVersion: latestVersion,
		CheckedAt:     c.now(),
	})
	if err != nil {
		return
	}

	//nolint:errcheck,gosec // Best effort cache write, error not actionable
	os.WriteFile(path, data, 0o644)
}

// PrintUpdateNotification writes an update notice to w if a newer release exists
func (c *Checker) PrintUpdateNotification(ctx context.Context, w io.Writer) {
	latestVersion, updateAvailable, err := c.CheckForUpdate(ctx)
	if err != nil || !updateAvailable {
		return
	}

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "⚠️  A new version of pilotdeck is available: %s (you have %s)\n", latestVersion, c.currentVersion())
	_, _ = fmt.Fprintf(w, "Update with: go install github.com/pilotdeck/pilotdeck/cmd/pilotdeck@latest\n")
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "To disable these notifications: pilotdeck config set skip-version-check true\n")
	_, _ = fmt.Fprintf(w, "\n")
}

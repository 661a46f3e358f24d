package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// setupServer points the CLI at handler with a throwaway config file
func setupServer(t *testing.T, handler http.Handler) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("PILOTDECK_CONFIG_PATH", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("PILOTDECK_ENV", "prod")
	t.Setenv("PILOTDECK_SERVER_URL", server.URL+"/api")
	t.Setenv("PM_ADMIN_TOKEN", "test-token")
	t.Setenv("PILOTDECK_TELEMETRY_DISABLED", "true")
	t.Cleanup(viper.Reset)

	lipgloss.SetColorProfile(termenv.Ascii)
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeJSONResponse(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestRootCommand_Flags(t *testing.T) {
	rootCmd := NewRootCmd()

	for _, name := range []string{"verbose", "no-color", "no-ansi", "disable-animation"} {
		flag := rootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "false", flag.DefValue, name)
	}

	for _, path := range [][]string{
		{"deploy"}, {"deploy", "watch"}, {"deploy", "status"}, {"deploy", "log"},
		{"ops", "push"}, {"ops", "pull-data"}, {"stats"}, {"version"},
		{"projects", "list"}, {"projects", "get"}, {"agent", "runs"}, {"agent", "events"},
		{"config", "set"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRootCommand_DisplayConfig(t *testing.T) {
	tcs := []struct {
		name                     string
		args                     []string
		expectedDisableAnimation bool
	}{
		{name: "no flags", expectedDisableAnimation: false},
		{name: "no-color", args: []string{"--no-color"}, expectedDisableAnimation: true},
		{name: "no-ansi", args: []string{"--no-ansi"}, expectedDisableAnimation: true},
		{name: "disable-animation", args: []string{"--disable-animation"}, expectedDisableAnimation: true},
		{name: "verbose only", args: []string{"--verbose"}, expectedDisableAnimation: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")

			rootCmd := NewRootCmd()
			require.NoError(t, rootCmd.ParseFlags(tc.args))

			verbose, _ := rootCmd.Flags().GetBool("verbose")
			displayOpts, err := ui.NewDisplayConfig(rootCmd, verbose)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedDisableAnimation, displayOpts.DisableAnimation)
		})
	}
}

func TestSkipVersionCheck(t *testing.T) {
	rootCmd := NewRootCmd()
	cfg := &config.Config{}

	configSet, _, err := rootCmd.Find([]string{"config", "set"})
	require.NoError(t, err)
	assert.True(t, skipVersionCheck(configSet, cfg))

	versionCmd, _, err := rootCmd.Find([]string{"version"})
	require.NoError(t, err)
	assert.True(t, skipVersionCheck(versionCmd, cfg))

	deployCmd, _, err := rootCmd.Find([]string{"deploy"})
	require.NoError(t, err)
	assert.False(t, skipVersionCheck(deployCmd, cfg))
	assert.True(t, skipVersionCheck(deployCmd, &config.Config{SkipVersionCheck: true}))

	statusCmd, _, err := rootCmd.Find([]string{"deploy", "status"})
	require.NoError(t, err)
	require.NoError(t, statusCmd.Flags().Set("output", "json"))
	assert.True(t, skipVersionCheck(statusCmd, cfg))
}

func TestTelemetryArgs(t *testing.T) {
	rootCmd := NewRootCmd()

	configSet, _, err := rootCmd.Find([]string{"config", "set"})
	require.NoError(t, err)
	assert.Nil(t, telemetryArgs(configSet, []string{"admin-token", "secret"}))

	getCmd, _, err := rootCmd.Find([]string{"projects", "get"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, telemetryArgs(getCmd, []string{"p1"}))
}

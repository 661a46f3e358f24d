package ui

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayConfig_SimpleOutput(t *testing.T) {
	tcs := []struct {
		name           string
		opts           DisplayConfig
		expectedSimple bool
	}{
		{
			name:           "interactive TTY with animations enabled",
			opts:           DisplayConfig{IsInteractive: true},
			expectedSimple: false,
		},
		{
			name:           "interactive TTY with animations disabled (--no-color)",
			opts:           DisplayConfig{IsInteractive: true, DisableAnimation: true},
			expectedSimple: true,
		},
		{
			name:           "piped output",
			opts:           DisplayConfig{IsInteractive: false},
			expectedSimple: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedSimple, tc.opts.SimpleOutput())
		})
	}
}

func newFlagCommand(args []string) (*cobra.Command, []string, error) {
	rootCmd := &cobra.Command{Use: "pilotdeck"}
	rootCmd.PersistentFlags().Bool("no-color", false, "")
	rootCmd.PersistentFlags().Bool("no-ansi", false, "")
	rootCmd.PersistentFlags().Bool("disable-animation", false, "")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "")

	childCmd := &cobra.Command{Use: "deploy", Run: func(cmd *cobra.Command, args []string) {}}
	rootCmd.AddCommand(childCmd)

	cmd, rest, err := rootCmd.Find(args)
	if err != nil {
		return nil, nil, err
	}
	return cmd, rest, cmd.ParseFlags(rest)
}

func TestNewDisplayConfig_Flags(t *testing.T) {
	tcs := []struct {
		name                     string
		args                     []string
		noColorEnv               string
		expectedDisableAnimation bool
		expectedNoColor          bool
	}{
		{name: "no flags", args: []string{"deploy"}, expectedDisableAnimation: false},
		{name: "--no-color", args: []string{"deploy", "--no-color"}, expectedDisableAnimation: true, expectedNoColor: true},
		{name: "--no-ansi", args: []string{"deploy", "--no-ansi"}, expectedDisableAnimation: true, expectedNoColor: true},
		{name: "--disable-animation", args: []string{"deploy", "--disable-animation"}, expectedDisableAnimation: true},
		{name: "global flag before command", args: []string{"--no-color", "deploy"}, expectedDisableAnimation: true, expectedNoColor: true},
		{name: "NO_COLOR env", args: []string{"deploy"}, noColorEnv: "1", expectedDisableAnimation: true, expectedNoColor: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tc.noColorEnv)

			cmd, _, err := newFlagCommand(tc.args)
			require.NoError(t, err)

			opts, err := NewDisplayConfig(cmd, false)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedDisableAnimation, opts.DisableAnimation)
			assert.Equal(t, tc.expectedNoColor, opts.NoColor)
			if opts.DisableAnimation {
				assert.True(t, opts.SimpleOutput())
			}
		})
	}
}

func TestResolveDisplayConfig(t *testing.T) {
	tcs := []struct {
		name string
		in   displayInputs
		want DisplayConfig
	}{
		{
			name: "terminal",
			in:   displayInputs{stdoutIsTTY: true},
			want: DisplayConfig{IsInteractive: true},
		},
		{
			name: "piped",
			in:   displayInputs{},
			want: DisplayConfig{},
		},
		{
			name: "no-ansi strips color and animation",
			in:   displayInputs{stdoutIsTTY: true, noAnsiFlag: true},
			want: DisplayConfig{DisableAnimation: true, NoColor: true},
		},
		{
			name: "disable-animation keeps color",
			in:   displayInputs{stdoutIsTTY: true, disableAnimation: true},
			want: DisplayConfig{DisableAnimation: true},
		},
		{
			name: "verbose on a shared terminal",
			in:   displayInputs{stdoutIsTTY: true, verbose: true, stderrIsStdout: true},
			want: DisplayConfig{},
		},
		{
			name: "verbose with stderr redirected",
			in:   displayInputs{stdoutIsTTY: true, verbose: true},
			want: DisplayConfig{IsInteractive: true},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveDisplayConfig(tc.in))
		})
	}
}

func TestGetDisplayConfigFromContext(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.SetContext(t.Context())
		_, err := GetDisplayConfigFromContext(cmd)
		assert.ErrorContains(t, err, "display options not found")
	})

	t.Run("present", func(t *testing.T) {
		want := DisplayConfig{IsInteractive: true}
		cmd := &cobra.Command{}
		cmd.SetContext(context.WithValue(t.Context(), GetDisplayConfigContextKey(), want))

		got, err := GetDisplayConfigFromContext(cmd)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

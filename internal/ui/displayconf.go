package ui

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// DisplayConfigContextKey is the key used to store DisplayConfig in context
type DisplayConfigContextKey struct{}

// GetDisplayConfigContextKey returns the key used to store DisplayConfig in context
func GetDisplayConfigContextKey() DisplayConfigContextKey {
	return DisplayConfigContextKey{}
}

// DisplayConfig decides between the Bubbletea views and plain line output
type DisplayConfig struct {
	DisableAnimation bool
	IsInteractive    bool
	// NoColor strips ANSI styling from lipgloss output
	NoColor bool
}

func (d DisplayConfig) SimpleOutput() bool {
	return !d.IsInteractive || d.DisableAnimation
}

// ApplyColorProfile switches lipgloss to plain ASCII when color is off
func (d DisplayConfig) ApplyColorProfile() {
	if d.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// displayInputs is everything the display mode depends on
type displayInputs struct {
	noColorFlag      bool
	noAnsiFlag       bool
	disableAnimation bool
	noColorEnv       bool
	verbose          bool
	stdoutIsTTY      bool
	stderrIsStdout   bool
}

func resolveDisplayConfig(in displayInputs) DisplayConfig {
	noColor := in.noColorFlag || in.noAnsiFlag || in.noColorEnv
	disableAnimation := noColor || in.disableAnimation

	// Verbose logs go to stderr; they only break the TUI when stderr and
	// stdout share a terminal
	verboseForcesSimple := in.verbose && in.stderrIsStdout

	return DisplayConfig{
		DisableAnimation: disableAnimation,
		IsInteractive:    in.stdoutIsTTY && !disableAnimation && !verboseForcesSimple,
		NoColor:          noColor,
	}
}

// NewDisplayConfig reads the persistent display flags, NO_COLOR and TTY state
func NewDisplayConfig(cmd *cobra.Command, verbose bool) (DisplayConfig, error) {
	in := displayInputs{verbose: verbose}
	in.noColorFlag, _ = cmd.Flags().GetBool("no-color")
	in.noAnsiFlag, _ = cmd.Flags().GetBool("no-ansi")
	in.disableAnimation, _ = cmd.Flags().GetBool("disable-animation")
	// https://no-color.org: any non-empty value disables color
	in.noColorEnv = os.Getenv("NO_COLOR") != ""
	in.stdoutIsTTY = isatty.IsTerminal(os.Stdout.Fd())

	if stdout, err := os.Stdout.Stat(); err == nil {
		if stderr, err := os.Stderr.Stat(); err == nil {
			in.stderrIsStdout = os.SameFile(stdout, stderr)
		}
	}

	opts := resolveDisplayConfig(in)

	slog.Debug("Display options determined",
		"command", cmd.Name(),
		"no-color", opts.NoColor,
		"disable-animation", opts.DisableAnimation,
		"verbose", verbose,
		"stdout-is-tty", in.stdoutIsTTY,
		"stderr-same-as-stdout", in.stderrIsStdout,
		"is-interactive", opts.IsInteractive,
	)

	return opts, nil
}

// GetDisplayConfigFromContext retrieves DisplayConfig from the command context
func GetDisplayConfigFromContext(cmd *cobra.Command) (DisplayConfig, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return DisplayConfig{}, fmt.Errorf("command context is nil")
	}

	opts, ok := ctx.Value(GetDisplayConfigContextKey()).(DisplayConfig)
	if !ok {
		return DisplayConfig{}, fmt.Errorf("display options not found in context")
	}

	return opts, nil
}

package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open config file in editor",
		Long: `Open the configuration file in your default editor.

The editor is determined by (in order):
  1. $EDITOR environment variable
  2. $VISUAL environment variable
  3. Falls back to 'vi' on Unix, 'notepad' on Windows

Example:
  pilotdeck config edit
  EDITOR="code --wait" pilotdeck config edit`,
		Args: cobra.NoArgs,
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.GetConfigPath()
	}
	if _, err := os.Stat(configFile); err != nil {
		return ui.NewConfigurationError(fmt.Errorf("config file not found: %w", err))
	}

	editor := resolveEditor()
	fmt.Fprintf(cmd.OutOrStdout(), "Opening %s with %s...\n", configFile, strings.Join(editor, " "))

	editorArgs := append(editor[1:], configFile)
	editorCmd := exec.CommandContext(cmd.Context(), editor[0], editorArgs...) //nolint:gosec // Editor from user's environment variable
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return ui.NewInternalError(fmt.Errorf("failed to open editor: %w", err))
	}

	return nil
}

// resolveEditor splits $EDITOR so values like "code --wait" work
func resolveEditor() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	if runtime.GOOS == "windows" {
		return []string{"notepad"}
	}
	return []string{"vi"}
}

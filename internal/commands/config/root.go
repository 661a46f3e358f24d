package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// NewConfigCmd creates the config command group
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `Manage CLI configuration settings.

Configuration is stored in ~/.pilotdeck/config.yaml (override with PILOTDECK_CONFIG_PATH).
Keys other than the global ones are stored per environment (PILOTDECK_ENV).

Available subcommands:
  set        - Set a configuration value
  get        - Get a configuration value
  list       - List all configuration
  edit       - Open config file in editor
  telemetry  - Enable or disable error reporting`,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEditCmd())
	cmd.AddCommand(newTelemetryCmd())

	return cmd
}

// normalizeKey turns "admin-token" into "admintoken"
func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "-", ""))
}

// displayValue masks secrets so tokens never end up in terminal scrollback
func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if !config.IsSecretKey(key) || s == "" {
		return s
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

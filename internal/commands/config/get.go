package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value from ~/.pilotdeck/config.yaml

Tokens are masked unless --reveal is given.

Examples:
  pilotdeck config get server
  pilotdeck config get request-timeout
  pilotdeck config get admin-token --reveal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], reveal)
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print secret values unmasked")

	return cmd
}

func runGet(cmd *cobra.Command, key string, reveal bool) error {
	cmd.SilenceUsage = true

	normalizedKey := normalizeKey(key)
	if !config.IsValidUserFacingKey(normalizedKey) {
		return ui.NewValidationError(fmt.Errorf("'%s' is not a recognized configuration key. Run 'pilotdeck config set --help' for valid keys", key))
	}

	// e.g. "server" → "dev-server" in dev
	actualKey := config.GetEnvironmentPrefixedKey(normalizedKey, config.GetEnvironment())
	if !viper.IsSet(actualKey) {
		return ui.NewValidationError(fmt.Errorf("configuration key '%s' not set", key))
	}

	value := viper.Get(actualKey)
	if reveal {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), displayValue(normalizedKey, value))
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.pilotdeck/config.yaml

Examples:
  pilotdeck config set server https://pm.example.com/api
  pilotdeck config set admin-token s3cret
  pilotdeck config set request-timeout 15s
  pilotdeck config set skip-version-check true`,
		Args: cobra.ExactArgs(2),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	key := args[0]
	value := args[1]

	normalizedKey := normalizeKey(key)
	if !config.IsValidUserFacingKey(normalizedKey) {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Error: '%s' is not a recognized configuration key\n\n", key)
		fmt.Fprintf(errOut, "Valid configuration keys:\n")
		for _, validKey := range config.GetUserFacingKeys() {
			if desc := config.GetConfigKeyDescription(normalizeKey(validKey)); desc != "" {
				fmt.Fprintf(errOut, "  %s - %s\n", validKey, desc)
			} else {
				fmt.Fprintf(errOut, "  %s\n", validKey)
			}
		}
		return ui.NewValidationError(fmt.Errorf("invalid configuration key"))
	}

	typedValue, err := parseValue(normalizedKey, value)
	if err != nil {
		return ui.NewValidationError(err)
	}

	actualKey := config.GetEnvironmentPrefixedKey(normalizedKey, config.GetEnvironment())
	viper.Set(actualKey, typedValue)

	if err := viper.WriteConfig(); err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to save config: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, displayValue(normalizedKey, typedValue))
	return nil
}

// parseValue converts the raw argument to the type Load expects for key
func parseValue(key, value string) (any, error) {
	switch key {
	case "requesttimeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("request-timeout must be a non-negative duration such as 15s, got %q", value)
		}
		return d.String(), nil
	case "server":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return nil, fmt.Errorf("server must be an http(s) URL, got %q", value)
		}
		return strings.TrimRight(value, "/"), nil
	}

	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return value, nil
	}
}

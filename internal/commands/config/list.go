package config

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration",
		Long: `List the configuration for the current environment from ~/.pilotdeck/config.yaml.
Tokens are masked.

Example:
  pilotdeck config list`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

type listEntry struct {
	userFacingKey string
	value         string
}

func runList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	env := config.GetEnvironment()
	out := cmd.OutOrStdout()

	var entries []listEntry
	for _, userFacingKey := range config.GetUserFacingKeys() {
		key := normalizeKey(userFacingKey)
		actualKey := config.GetEnvironmentPrefixedKey(key, env)
		if !viper.IsSet(actualKey) {
			continue
		}
		entries = append(entries, listEntry{
			userFacingKey: userFacingKey,
			value:         displayValue(key, viper.Get(actualKey)),
		})
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No configuration found for current environment")
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].userFacingKey < entries[j].userFacingKey
	})

	for _, e := range entries {
		fmt.Fprintf(out, "%s: %s\n", e.userFacingKey, e.value)
	}

	return nil
}

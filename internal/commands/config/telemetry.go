package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage telemetry settings",
		Long: `Manage crash and error reporting for the PilotDeck CLI.

Reports contain error messages and system metadata only. Set
PILOTDECK_TELEMETRY_DISABLED=true to turn reporting off for a single shell.`,
	}

	cmd.AddCommand(newTelemetryToggleCmd("enable", true))
	cmd.AddCommand(newTelemetryToggleCmd("disable", false))
	cmd.AddCommand(newTelemetryStatusCmd())

	return cmd
}

func newTelemetryToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s telemetry and error reporting", ui.StatusLabel(use)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
			}

			cfg.TelemetryEnabled = &enabled
			if err := config.Save(cfg); err != nil {
				return ui.NewConfigurationError(fmt.Errorf("failed to save config: %w", err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Telemetry %sd\n", use)
			return nil
		},
	}
}

func newTelemetryStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current telemetry status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
			}

			state := "disabled"
			if cfg.IsTelemetryEnabled() {
				state = "enabled"
			}
			if os.Getenv("PILOTDECK_TELEMETRY_DISABLED") != "" {
				state += " (from PILOTDECK_TELEMETRY_DISABLED)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Telemetry: %s\n", state)
			return nil
		},
	}
}

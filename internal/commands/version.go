package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/version"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// NewVersionCmd prints the CLI version and, unless disabled, whether a newer release exists
func NewVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())

			if !check {
				return nil
			}
			cfg, err := config.GetConfigFromContext(cmd)
			if err != nil {
				return err
			}
			checker := version.NewChecker(cfg.GetEnvConfig().ReleasesURL)
			checker.CachePath = "-"
			checker.PrintUpdateNotification(cmd.Context(), cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")

	return cmd
}

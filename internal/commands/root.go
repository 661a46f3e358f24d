package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	agentCmd "github.com/pilotdeck/pilotdeck/internal/commands/agent"
	configCmd "github.com/pilotdeck/pilotdeck/internal/commands/config"
	projectsCmd "github.com/pilotdeck/pilotdeck/internal/commands/projects"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/internal/version"
	"github.com/pilotdeck/pilotdeck/pkg/config"
	"github.com/pilotdeck/pilotdeck/pkg/logsetup"
	"github.com/pilotdeck/pilotdeck/pkg/telemetry"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pilotdeck",
		Short: "PilotDeck CLI",
		Long:  "Command line interface for the PilotDeck project dashboard: deploys, ops scripts, projects and agent activity",
		// main.go prints errors. Commands set SilenceUsage themselves so
		// unknown commands still show usage.
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")

			displayOpts, err := ui.NewDisplayConfig(cmd, verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error getting display options: %v\n", err)
				os.Exit(1)
			}

			displayOpts.ApplyColorProfile()

			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}

			if verbose {
				logFile, err := logsetup.Setup(logsetup.Options{
					Interactive: displayOpts.IsInteractive,
					Level:       cfg.GetLogLevel(),
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error setting up logger: %v\n", err)
					os.Exit(1)
				}
				if logFile != "" {
					fmt.Fprintf(os.Stderr, "Debug logs: %s\n", logFile)
				}
			} else {
				logsetup.Disable()
			}

			slog.Debug("config loaded", "server", cfg.GetAPIBaseURL(), "env", config.GetEnvironment())

			telemetry.SetCommandContext(cmd.CommandPath(), telemetryArgs(cmd, args))

			ctx := context.WithValue(cmd.Context(), config.GetContextKey(), cfg)
			ctx = context.WithValue(ctx, ui.GetDisplayConfigContextKey(), displayOpts)
			cmd.SetContext(ctx)

			if !skipVersionCheck(cmd, cfg) {
				version.NewChecker(cfg.GetEnvConfig().ReleasesURL).PrintUpdateNotification(cmd.Context(), os.Stderr)
			}
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output and animations")
	rootCmd.PersistentFlags().Bool("no-ansi", false, "Disable colored output and animations (equivalent to --no-color)")
	rootCmd.PersistentFlags().Bool("disable-animation", false, "Disable animations and print plain line output")

	rootCmd.AddCommand(NewDeployCmd())
	rootCmd.AddCommand(NewOpsCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(projectsCmd.NewProjectsCmd())
	rootCmd.AddCommand(agentCmd.NewAgentCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())

	return rootCmd
}

// skipVersionCheck is true for commands where an update banner is noise
func skipVersionCheck(cmd *cobra.Command, cfg *config.Config) bool {
	if cfg.SkipVersionCheck {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "version" || c.Name() == "config" {
			return true
		}
	}
	// JSON consumers parse stdout; the banner goes to stderr but still
	// costs a network round trip
	if output, err := cmd.Flags().GetString("output"); err == nil && output != "" {
		return true
	}
	return false
}

// telemetryArgs drops arguments that can hold secrets (config set <key> <value>)
func telemetryArgs(cmd *cobra.Command, args []string) []string {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return nil
		}
	}
	return args
}

package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	uiCommands "github.com/pilotdeck/pilotdeck/internal/ui/commands"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// NewDeployCmd creates the deploy command group
func NewDeployCmd() *cobra.Command {
	var detach bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the PilotDeck server and follow the deploy log",
		Long: `Trigger a deploy job on the PilotDeck server (POST /admin/deploy) and follow
its log until the job finishes.

The server restarts during the deploy, so the log may briefly fail with
HTTP 502. The CLI keeps polling with backoff and reconnects on its own.
Ctrl+C stops following; the deploy itself keeps running on the server.

Requires the admin token (config key admin-token or PM_ADMIN_TOKEN).

Example:
  pilotdeck deploy
  pilotdeck deploy --detach
  pilotdeck deploy --no-color  # Plain line output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, deployOptions{detach: detach})
		},
	}

	cmd.Flags().BoolVar(&detach, "detach", false, "Trigger the deploy and exit without following its log. Use 'pilotdeck deploy watch' to follow it later.")

	cmd.AddCommand(newDeployWatchCmd())
	cmd.AddCommand(newDeployStatusCmd())
	cmd.AddCommand(newDeployLogCmd())

	return cmd
}

func newDeployWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the log of the current deploy job",
		Long: `Follow the log of the current (or last) deploy job without starting a new one.
Exits when the job succeeds or fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, deployOptions{watchOnly: true})
		},
	}
}

type deployOptions struct {
	detach    bool
	watchOnly bool
}

func runDeploy(cmd *cobra.Command, opts deployOptions) error {
	cmd.SilenceUsage = true

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, client, err := newClientFromContext(cmd)
	if err != nil {
		return err
	}

	model := uiCommands.NewDeployView(cmd.Context(), uiCommands.DeployConfig{
		DisplayConfig:  displayOpts,
		Client:         client,
		RequestTimeout: cfg.RequestTimeout,
		Detach:         opts.detach,
		WatchOnly:      opts.watchOnly,
		Out:            cmd.OutOrStdout(),
	})

	_, err = ui.RunProgram(model, displayOpts, 5*time.Second)
	return err
}

func newDeployStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the current deploy job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if output != "" && output != "json" {
				return ui.NewValidationError(fmt.Errorf("unsupported output format %q (expected json)", output))
			}

			_, client, err := newClientFromContext(cmd)
			if err != nil {
				return err
			}

			spinner := ui.NewSimpleSpinner("Fetching deploy status...")
			spinner.Start()
			status, err := client.GetDeployStatus(cmd.Context())
			spinner.Stop()
			if err != nil {
				return ui.NewErrorFromAPI(fmt.Errorf("get deploy status: %w", err))
			}

			if output == "json" {
				return writeJSON(cmd, status)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatDeployStatus(status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (json)")

	return cmd
}

func formatDeployStatus(status *api.DeployStatus) string {
	var b strings.Builder

	fmt.Fprintf(&b, "State:    %s\n", ui.ColorizeStatus(string(status.State.Normalize())))
	if status.Method != "" {
		fmt.Fprintf(&b, "Method:   %s\n", status.Method)
	}
	if status.Unit != "" {
		fmt.Fprintf(&b, "Unit:     %s\n", status.Unit)
	}
	if status.PID != nil {
		fmt.Fprintf(&b, "PID:      %d\n", *status.PID)
	}
	if status.ExitCode != nil {
		fmt.Fprintf(&b, "Exit:     %s\n", strconv.Itoa(*status.ExitCode))
	}
	if status.StartedAt != "" {
		fmt.Fprintf(&b, "Started:  %s\n", status.StartedAt)
	}
	if status.UpdatedAt != "" {
		fmt.Fprintf(&b, "Updated:  %s\n", status.UpdatedAt)
	}
	if status.Message != "" {
		fmt.Fprintf(&b, "Message:  %s\n", status.Message)
	}

	return b.String()
}

func newDeployLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Print the current deploy log window once",
		Long: `Print the lines the server currently holds for the deploy log.
The server keeps a bounded tail; use 'pilotdeck deploy watch' to follow it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			_, client, err := newClientFromContext(cmd)
			if err != nil {
				return err
			}

			logResp, err := client.GetDeployLog(cmd.Context())
			if err != nil {
				return ui.NewErrorFromAPI(fmt.Errorf("get deploy log: %w", err))
			}

			for _, line := range logResp.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

// newClientFromContext builds an API client from the config loaded by the root command
func newClientFromContext(cmd *cobra.Command) (*config.Config, api.Client, error) {
	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return nil, nil, ui.NewValidationError(fmt.Errorf("failed to get config: %w", err))
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, nil, ui.NewConfigurationError(fmt.Errorf("failed to create API client: %w", err))
	}

	return cfg, client, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return ui.NewInternalError(fmt.Errorf("encode json: %w", err))
	}
	return nil
}

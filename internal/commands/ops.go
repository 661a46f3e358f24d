package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// opsOutputTail is how much script output is shown when an ops script fails
const opsOutputTail = 100

// NewOpsCmd creates the ops command group for the admin git sync endpoints
func NewOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Run the server's git sync scripts",
		Long: `Run the admin git sync scripts on the PilotDeck server.

Requires the admin token (config key admin-token or PM_ADMIN_TOKEN).`,
	}

	cmd.AddCommand(newOpsPushCmd())
	cmd.AddCommand(newOpsPullDataCmd())

	return cmd
}

func newOpsPushCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Commit and push the data repository",
		Long: `Commit and push the server's data to its git remote.
With --all the whole repository is pushed, not just data.

Examples:
  pilotdeck ops push
  pilotdeck ops push --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			_, client, err := newClientFromContext(cmd)
			if err != nil {
				return err
			}

			mode := api.PushDataOnly
			if all {
				mode = api.PushAll
			}
			return runOpsScript(cmd.Context(), cmd.OutOrStdout(), "push ("+string(mode)+")", func(ctx context.Context) (*api.OpsResult, error) {
				return client.PushData(ctx, mode)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Push the whole repository instead of data only")

	return cmd
}

func newOpsPullDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull-data",
		Short: "Pull the data repository from its remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			_, client, err := newClientFromContext(cmd)
			if err != nil {
				return err
			}

			return runOpsScript(cmd.Context(), cmd.OutOrStdout(), "data pull", client.PullDataRepo)
		},
	}
}

// runOpsScript runs one admin script and prints its output. On failure the
// tail of the script output is printed before the error is returned.
func runOpsScript(ctx context.Context, out io.Writer, label string, run func(context.Context) (*api.OpsResult, error)) error {
	spinner := ui.NewSimpleSpinner("Running " + label + "...")
	spinner.Start()
	result, err := run(ctx)
	spinner.Stop()

	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			if tail := apiErr.OutputTail(opsOutputTail); tail != "" {
				fmt.Fprintln(out, tail)
			}
		}
		return ui.NewErrorFromAPI(fmt.Errorf("%s failed: %w", label, err))
	}

	if output := strings.TrimSpace(result.Output); output != "" {
		fmt.Fprintln(out, output)
	}
	fmt.Fprintf(out, "✓ %s finished\n", label)
	return nil
}

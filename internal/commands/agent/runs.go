package agent

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	uiAgent "github.com/pilotdeck/pilotdeck/internal/ui/commands/agent"
)

var validRunStatuses = []api.AgentRunStatus{
	api.AgentRunRunning,
	api.AgentRunCompleted,
	api.AgentRunFailed,
	api.AgentRunCancelled,
}

func newRunsCmd() *cobra.Command {
	var filters api.AgentRunFilters
	var status string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List agent runs, most recently updated first",
		Long: `List agent runs, most recently updated first.

Examples:
  pilotdeck agent runs
  pilotdeck agent runs --project website --status failed
  pilotdeck agent runs --limit 20 --offset 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			filters.Status = api.AgentRunStatus(status)
			if err := validateRunFilters(filters); err != nil {
				return ui.NewValidationError(err)
			}

			client, displayOpts, err := clientAndDisplay(cmd)
			if err != nil {
				return err
			}

			model := uiAgent.NewRunsView(cmd.Context(), uiAgent.RunsConfig{
				DisplayConfig: displayOpts,
				Client:        client,
				Filters:       filters,
				Out:           cmd.OutOrStdout(),
			})
			_, err = ui.RunProgram(model, displayOpts, time.Second)
			return err
		},
	}

	cmd.Flags().StringVar(&filters.ProjectID, "project", "", "Only runs of this project")
	cmd.Flags().StringVar(&filters.AgentID, "agent", "", "Only runs of this agent")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (running, completed, failed, cancelled)")
	cmd.Flags().IntVar(&filters.Limit, "limit", 50, "Maximum number of runs (1-500)")
	cmd.Flags().IntVar(&filters.Offset, "offset", 0, "Number of runs to skip")

	return cmd
}

func validateRunFilters(f api.AgentRunFilters) error {
	if f.Status != "" && !slices.Contains(validRunStatuses, f.Status) {
		return fmt.Errorf("invalid --status %q", f.Status)
	}
	if f.Limit < 1 || f.Limit > 500 {
		return fmt.Errorf("--limit must be between 1 and 500, got %d", f.Limit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("--offset must not be negative")
	}
	return nil
}

package agent

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/timeutil"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	uiAgent "github.com/pilotdeck/pilotdeck/internal/ui/commands/agent"
)

type eventsOptions struct {
	filters api.AgentEventFilters
	since   string
}

func newEventsCmd() *cobra.Command {
	var opts eventsOptions

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the agent event stream",
		Long: `Show agent events, oldest first.

--since accepts a relative duration (30s, 15m, 2h, 3d, 1w) or a timestamp
(2026-03-01, 2026-03-01 14:00, RFC 3339). Timestamps without a zone are local time.

Examples:
  pilotdeck agent events --since 2h
  pilotdeck agent events --project website --type error
  pilotdeck agent events --run run-42 --limit 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			filters, err := opts.resolve(time.Now(), time.Local)
			if err != nil {
				return ui.NewValidationError(err)
			}

			client, displayOpts, err := clientAndDisplay(cmd)
			if err != nil {
				return err
			}

			model := uiAgent.NewEventsView(cmd.Context(), uiAgent.EventsConfig{
				DisplayConfig: displayOpts,
				Client:        client,
				Filters:       filters,
				Out:           cmd.OutOrStdout(),
			})
			_, err = ui.RunProgram(model, displayOpts, time.Second)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.filters.ProjectID, "project", "", "Only events of this project")
	cmd.Flags().StringVar(&opts.filters.RunID, "run", "", "Only events of this run")
	cmd.Flags().StringVar(&opts.filters.AgentID, "agent", "", "Only events of this agent")
	cmd.Flags().StringVar(&opts.filters.Type, "type", "", "Filter by type (note, action, result, error, milestone)")
	cmd.Flags().StringVar(&opts.since, "since", "", "Only events at or after this time")
	cmd.Flags().IntVar(&opts.filters.Limit, "limit", 200, "Maximum number of events (1-2000)")

	return cmd
}

func (o eventsOptions) resolve(now time.Time, loc *time.Location) (api.AgentEventFilters, error) {
	filters := o.filters
	if o.since != "" {
		since, err := timeutil.ParseSince(o.since, now, loc)
		if err != nil {
			return filters, err
		}
		filters.Since = since
	}
	if filters.Limit < 1 || filters.Limit > 2000 {
		return filters, fmt.Errorf("--limit must be between 1 and 2000, got %d", filters.Limit)
	}
	return filters, nil
}

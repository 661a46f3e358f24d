package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// serverOverview is what `pilotdeck stats` shows, also its -o json shape
type serverOverview struct {
	Health *api.Health `json:"health"`
	Meta   *api.Meta   `json:"meta"`
	Stats  *api.Stats  `json:"stats"`
}

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server health and project statistics",
		Long: `Show server health, metadata and project statistics (counts by status and
priority, cost and revenue totals).

Example:
  pilotdeck stats
  pilotdeck stats -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if output != "" && output != "json" {
				return ui.NewValidationError(fmt.Errorf("unsupported output format %q (expected json)", output))
			}

			_, client, err := newClientFromContext(cmd)
			if err != nil {
				return err
			}

			spinner := ui.NewSimpleSpinner("Loading stats...")
			spinner.Start()
			overview, err := fetchOverview(cmd.Context(), client)
			spinner.Stop()
			if err != nil {
				return ui.NewErrorFromAPI(err)
			}

			if output == "json" {
				return writeJSON(cmd, overview)
			}
			printOverview(cmd.OutOrStdout(), overview)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (json)")

	return cmd
}

// fetchOverview loads stats, meta and health concurrently. The first error
// cancels the other requests.
func fetchOverview(ctx context.Context, client api.Client) (*serverOverview, error) {
	var overview serverOverview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := client.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		overview.Stats = stats
		return nil
	})
	g.Go(func() error {
		meta, err := client.GetMeta(ctx)
		if err != nil {
			return fmt.Errorf("get meta: %w", err)
		}
		overview.Meta = meta
		return nil
	})
	g.Go(func() error {
		health, err := client.GetHealth(ctx)
		if err != nil {
			return fmt.Errorf("get health: %w", err)
		}
		overview.Health = health
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

func printOverview(out io.Writer, o *serverOverview) {
	fmt.Fprintf(out, "Server:        %s (%s)\n", o.Meta.Service, o.Health.Status)
	fmt.Fprintf(out, "API:           %s\n", o.Meta.APIBase)
	if o.Meta.DataLastUpdated != "" {
		fmt.Fprintf(out, "Data updated:  %s\n", o.Meta.DataLastUpdated)
	}
	fmt.Fprintf(out, "Admin token:   %s\n", requiredLabel(o.Meta.Auth.AdminTokenRequired))
	fmt.Fprintf(out, "Agent token:   %s\n", requiredLabel(o.Meta.Auth.AgentTokenRequired))

	fmt.Fprintf(out, "\nProjects:      %d\n", o.Stats.Total)
	fmt.Fprintf(out, "By status:     %s\n", formatCounts(o.Stats.ByStatus, o.Meta.Enums.Status))
	fmt.Fprintf(out, "By priority:   %s\n", formatCounts(o.Stats.ByPriority, o.Meta.Enums.Priority))

	f := o.Stats.Financial
	fmt.Fprintf(out, "\nCost:          %.2f\n", f.TotalCost)
	fmt.Fprintf(out, "Revenue:       %.2f\n", f.TotalRevenue)
	fmt.Fprintf(out, "Net profit:    %.2f\n", f.NetProfit)
}

func requiredLabel(required bool) string {
	if required {
		return "required"
	}
	return "not required"
}

// formatCounts lists counts in the server's enum order, then any extra keys
// alphabetically
func formatCounts(counts map[string]int, order []string) string {
	if len(counts) == 0 {
		return "-"
	}

	seen := make(map[string]bool, len(order))
	var parts []string
	for _, key := range order {
		seen[key] = true
		if n, ok := counts[key]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", key, n))
		}
	}

	var extra []string
	for key := range counts {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		parts = append(parts, fmt.Sprintf("%s %d", key, counts[key]))
	}

	return strings.Join(parts, ", ")
}

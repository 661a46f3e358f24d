package projects

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	uiProjects "github.com/pilotdeck/pilotdeck/internal/ui/commands/projects"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

var (
	validStatuses = []api.ProjectStatus{
		api.ProjectStatusPlanning,
		api.ProjectStatusInProgress,
		api.ProjectStatusPaused,
		api.ProjectStatusCompleted,
		api.ProjectStatusCancelled,
	}
	validPriorities = []api.ProjectPriority{
		api.PriorityLow,
		api.PriorityMedium,
		api.PriorityHigh,
		api.PriorityUrgent,
	}
)

type listOptions struct {
	status   string
	priority string
	category string
	tag      string
	sort     string
	output   string
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long: `List projects, optionally filtered.

--status, --priority and --category are applied by the server. --tag is a
glob matched against each tag (doublestar syntax, e.g. 'client/*').

Examples:
  pilotdeck projects list
  pilotdeck projects list --status in-progress --sort priority
  pilotdeck projects list --tag 'client/**' -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.status, "status", "", "Filter by status (planning, in-progress, paused, completed, cancelled)")
	cmd.Flags().StringVar(&opts.priority, "priority", "", "Filter by priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Only show projects with a tag matching this glob")
	cmd.Flags().StringVar(&opts.sort, "sort", uiProjects.SortManual, "Sort order: manual (server order) or priority")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output format (json)")

	return cmd
}

func (o listOptions) filters() (api.ProjectFilters, error) {
	filters := api.ProjectFilters{
		Status:   api.ProjectStatus(o.status),
		Priority: api.ProjectPriority(o.priority),
		Category: o.category,
	}
	if o.status != "" && !slices.Contains(validStatuses, filters.Status) {
		return filters, fmt.Errorf("invalid --status %q", o.status)
	}
	if o.priority != "" && !slices.Contains(validPriorities, filters.Priority) {
		return filters, fmt.Errorf("invalid --priority %q", o.priority)
	}
	if o.sort != uiProjects.SortManual && o.sort != uiProjects.SortPriority {
		return filters, fmt.Errorf("invalid --sort %q (expected manual or priority)", o.sort)
	}
	if o.output != "" && o.output != "json" {
		return filters, fmt.Errorf("unsupported output format %q (expected json)", o.output)
	}
	return filters, nil
}

func runList(cmd *cobra.Command, opts listOptions) error {
	cmd.SilenceUsage = true

	filters, err := opts.filters()
	if err != nil {
		return ui.NewValidationError(err)
	}

	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return ui.NewValidationError(fmt.Errorf("failed to get config: %w", err))
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to create API client: %w", err))
	}

	if opts.output == "json" {
		projects, err := client.GetProjects(cmd.Context(), filters)
		if err != nil {
			return ui.NewErrorFromAPI(fmt.Errorf("list projects: %w", err))
		}
		projects, err = uiProjects.FilterAndSort(projects, opts.tag, opts.sort)
		if err != nil {
			return ui.NewValidationError(err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	model := uiProjects.NewListView(cmd.Context(), uiProjects.ListConfig{
		DisplayConfig: displayOpts,
		Client:        client,
		Filters:       filters,
		TagPattern:    opts.tag,
		Sort:          opts.sort,
		Out:           cmd.OutOrStdout(),
	})

	_, err = ui.RunProgram(model, displayOpts, time.Second)
	return err
}

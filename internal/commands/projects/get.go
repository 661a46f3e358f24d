package projects

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	uiProjects "github.com/pilotdeck/pilotdeck/internal/ui/commands/projects"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <project-id>",
		Short: "Show one project",
		Long: `Show the details of a project: status, progress, financials, links and orders.

Example:
  pilotdeck projects get website-relaunch`,
		Args: cobra.ExactArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

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

	model := uiProjects.NewGetView(cmd.Context(), uiProjects.GetConfig{
		DisplayConfig: displayOpts,
		Client:        client,
		ProjectID:     args[0],
		Out:           cmd.OutOrStdout(),
	})

	_, err = ui.RunProgram(model, displayOpts, time.Second)
	return err
}

package agent

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/config"
)

// NewAgentCmd creates the agent command group
func NewAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect agent runs and events",
		Long: `Read the agent activity recorded by the PilotDeck server.

If the server sets PM_AGENT_TOKEN, configure the same value with
'pilotdeck config set agent-token <token>' or export PM_AGENT_TOKEN.`,
	}

	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newEventsCmd())

	return cmd
}

func clientAndDisplay(cmd *cobra.Command) (api.Client, ui.DisplayConfig, error) {
	displayOpts, err := ui.GetDisplayConfigFromContext(cmd)
	if err != nil {
		return nil, displayOpts, ui.NewValidationError(fmt.Errorf("failed to get display options: %w", err))
	}

	cfg, err := config.GetConfigFromContext(cmd)
	if err != nil {
		return nil, displayOpts, ui.NewValidationError(fmt.Errorf("failed to get config: %w", err))
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, displayOpts, ui.NewConfigurationError(fmt.Errorf("failed to create API client: %w", err))
	}

	return client, displayOpts, nil
}

package projects

import (
	"github.com/spf13/cobra"
)

// NewProjectsCmd creates the projects command group
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Short:   "Browse PilotDeck projects (alias: `project`)",
		Long:    "Read-only views of the projects tracked by the PilotDeck server",
		Aliases: []string{"project"},
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())

	return cmd
}

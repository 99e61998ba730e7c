package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "family-todo",
		Short:        "Shared family to-do lists server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the web server (default)
  family-todo

  # Create or update the database schema and exit
  family-todo migrate
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => serve.
			return runServe(cmd)
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

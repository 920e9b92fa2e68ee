package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the kalender command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kalender",
		Short:        "Month-view calendar grid service",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the grid API (read only)
  kalender serve

  # Serve with the event editor enabled
  kalender serve --edit

  # Print the padded grid for two weeks starting 2012-12-03
  kalender grid --start 2012-12-03 --duration 14 --first-day 0

  # Import an iCalendar file into a calendar
  kalender import --calendar team events.ics
`),
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newGridCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

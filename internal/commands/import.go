package commands

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/klabast/wb-services/kalender-grid/internal/app"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		calendar  string
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Import the events of an iCalendar file into a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			events, err := app.ParseICS(f)
			if err != nil {
				return err
			}
			for i := range events {
				if events[i].Type == "" {
					events[i].Type = eventType
				}
			}

			// Uncommitted edits stay uncommitted: the import joins them in
			// the tmp file instead of replacing the main file under them.
			store := app.NewStore(cfg.DataFile)
			pending := store.HasTmpChanges()
			if err := store.LoadWithTmpCheck(); err != nil {
				return err
			}
			added := store.Import(calendar, filepath.Base(args[0]), events)
			save := store.Save
			if pending {
				save = store.SavePending
			}
			if err := save(); err != nil {
				return fmt.Errorf("%s: %w", app.ErrFailedToSave, err)
			}

			log.Printf("[import] %s: %d of %d events added to %q", args[0], added, len(events), calendar)
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d events into %s\n", added, calendar)
			if pending {
				fmt.Fprintln(cmd.OutOrStdout(), "⚠️  Uncommitted edits found: the import was added to them, commit in edit mode to keep it")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&calendar, "calendar", "", "Target calendar name")
	cmd.Flags().StringVar(&eventType, "type", "meeting", "Event type for entries without CATEGORIES")
	_ = cmd.MarkFlagRequired("calendar")
	return cmd
}

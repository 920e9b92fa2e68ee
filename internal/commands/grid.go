package commands

import (
	"encoding/json"
	"fmt"

	"github.com/klabast/wb-services/kalender-grid/internal/app"
	"github.com/klabast/wb-services/kalender-grid/internal/grid"
	"github.com/spf13/cobra"
)

func newGridCmd() *cobra.Command {
	var (
		req    app.GridRequest
		header bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print a padded month grid as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("first-day") {
				req.FirstDay = cfg.FirstDayOfWeek
			}
			if !flags.Changed("prefill") {
				req.Prefill = cfg.Prefill
			}
			if !flags.Changed("postfill") {
				req.Postfill = cfg.Postfill
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}

			if header {
				if req.FirstDay < 0 || req.FirstDay > 6 {
					return fmt.Errorf("first day of week must be between 0 and 6, got %d", req.FirstDay)
				}
				return enc.Encode(grid.HeaderLabels(grid.WeekdayLabels[:], req.FirstDay))
			}

			store := app.NewStore(cfg.DataFile)
			if err := store.Load(); err != nil {
				return err
			}
			g, err := app.New(cfg, store, nil).BuildGrid(req)
			if err != nil {
				return err
			}
			months, err := g.Get()
			if err != nil {
				return err
			}
			return enc.Encode(months)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Start, "start", "", `Start date "YYYY-MM-DD" or "YYYY-MM"`)
	f.IntVar(&req.Duration, "duration", 0, "Number of real days (0 = length of the start month)")
	f.IntVar(&req.FirstDay, "first-day", 1, "First day of week, 0 = Sunday")
	f.BoolVar(&req.Prefill, "prefill", true, "Pad the first week")
	f.BoolVar(&req.Postfill, "postfill", true, "Pad the last week")
	f.StringVar(&req.Month, "month", "", `Only show one month "YYYY-MM"`)
	f.StringVar(&req.Calendar, "calendar", "", "Attach the events of this calendar")
	f.StringVar(&req.Types, "types", "", "Comma separated event types to include")
	f.BoolVar(&header, "header", false, "Print the weekday header only")
	f.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

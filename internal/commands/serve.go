package commands

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/klabast/wb-services/kalender-grid/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port     int
		edit     bool
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar grid API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("edit") {
				cfg.EditMode = edit
			}
			if cmd.Flags().Changed("data") {
				cfg.DataFile = dataFile
			}

			logs := app.SetupLogging(cfg)
			defer logs.Close()

			var creds *app.Credentials
			if cfg.EditMode {
				path, err := app.AuthFilePath(cfg)
				if err != nil {
					return err
				}
				if creds, err = app.LoadCredentials(path); err != nil {
					return fmt.Errorf("failed to load auth credentials: %w", err)
				}
			}

			// Edit mode picks up unsaved changes from a previous run
			store := app.NewStore(cfg.DataFile)
			if cfg.EditMode {
				err = store.LoadWithTmpCheck()
			} else {
				err = store.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load calendar data: %w", err)
			}

			a := app.New(cfg, store, creds)
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           a.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Printf("Starting Kalender in %s mode on http://localhost:%d", cfg.Mode(), cfg.Port)
			log.Printf("Data file: %s", store.Path())
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides KALENDER_PORT)")
	cmd.Flags().BoolVar(&edit, "edit", false, "Enable edit mode (overrides KALENDER_EDIT)")
	cmd.Flags().StringVar(&dataFile, "data", app.DefaultCalendarFile, "Events JSON file (overrides KALENDER_DATA_FILE)")
	return cmd
}

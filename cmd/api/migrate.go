package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/worklog-app/worklog-backend/config"
	"github.com/worklog-app/worklog-backend/internal/logging"
	"github.com/worklog-app/worklog-backend/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log := logging.New(os.Stdout, cfg.App.LogLevel, cfg.IsProduction())

		db, err := postgres.NewConnection(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
		log.Info(ctx, "migrations applied")
		return nil
	},
}

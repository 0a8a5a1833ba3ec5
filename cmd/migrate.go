package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/eduverse-backend/internal/app"
	"github.com/yungbote/eduverse-backend/internal/data/db"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg := app.LoadConfig(log)
		svc, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		log.Info("Schema is up to date", "driver", svc.Driver())
		return nil
	},
}

func newLogger() (*logger.Logger, error) {
	log, err := logger.New(app.LogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

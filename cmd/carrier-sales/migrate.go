package main

import (
	"github.com/navid-fn/carrier-sales/configs"
	"github.com/navid-fn/carrier-sales/internal/storage"
	"github.com/navid-fn/carrier-sales/utils"
	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *configs.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured sql backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger(cfg.LogLevel)

			db, err := storage.Open(cfg.Storage, logger)
			if err != nil {
				logger.WithError(err).Error("Failed to connect to database")
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := storage.Migrate(db, cfg.Storage.Backend, logger); err != nil {
				logger.WithError(err).Error("Goose migration failed")
				return err
			}
			return nil
		},
	}
}

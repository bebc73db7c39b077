package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/navid-fn/carrier-sales/configs"
	"github.com/navid-fn/carrier-sales/internal/handler"
	"github.com/navid-fn/carrier-sales/internal/handoff"
	"github.com/navid-fn/carrier-sales/internal/repository"
	"github.com/navid-fn/carrier-sales/internal/router"
	"github.com/navid-fn/carrier-sales/internal/service"
	"github.com/navid-fn/carrier-sales/internal/storage"
	"github.com/navid-fn/carrier-sales/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *configs.AppConfig) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply database migrations before serving (sql backends only)")

	return cmd
}

func runServe(ctx context.Context, cfg *configs.AppConfig, migrate bool) error {
	logger := utils.NewLogger(cfg.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	loads, err := repository.NewCSVLoadRepository(cfg.LoadsCSVPath, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load catalog")
		return err
	}

	calls, err := openCallRepository(cfg.Storage, logger, migrate)
	if err != nil {
		logger.WithError(err).Error("Failed to open call store")
		return err
	}
	defer calls.Close()

	dispatcher, err := handoff.New(cfg.Handoff, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to set up sales hand-off")
		return err
	}
	defer dispatcher.Close()

	callService := service.NewCallMetricsService(calls, logger)
	routerConfig := &router.Config{
		LoadHandler:        handler.NewLoadHandler(service.NewLoadService(loads)),
		CallMetricsHandler: handler.NewCallMetricsHandler(callService, logger),
		TransferHandler:    handler.NewTransferHandler(service.NewTransferService(dispatcher), logger),
		DashboardHandler:   handler.NewDashboardHandler(service.NewDashboardService(calls), cfg.APIKey, logger),
		APIKey:             cfg.APIKey,
		Limiter:            router.NewLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		Logger:             logger,
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": cfg.Storage.Backend,
		}).Info("Carrier sales API started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server stopped with error")
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown failed")
			return err
		}
	}

	logger.Info("Carrier sales API shutdown complete")
	return nil
}

// openCallRepository builds the call store selected by cfg.Backend.
func openCallRepository(cfg configs.StorageConfig, logger *logrus.Logger, migrate bool) (repository.CallRecordRepository, error) {
	if cfg.Backend == configs.BackendCSV {
		return repository.NewCSVCallRepository(cfg.CallsCSVPath, logger)
	}

	db, err := storage.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migrateOrClose(db, cfg.Backend, logger); err != nil {
			return nil, err
		}
	}
	return repository.NewGormCallRepository(db), nil
}

// migrateOrClose applies the migrations and releases db when they fail.
func migrateOrClose(db *gorm.DB, backend string, logger logrus.FieldLogger) error {
	err := storage.Migrate(db, backend, logger)
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close database after migration error")
		}
	}
	return err
}

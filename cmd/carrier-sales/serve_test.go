package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/navid-fn/carrier-sales/configs"
	"github.com/navid-fn/carrier-sales/internal/model"
	"github.com/navid-fn/carrier-sales/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCallRepository(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()
	ctx := context.Background()

	tests := map[string]configs.StorageConfig{
		"csv":    {Backend: configs.BackendCSV, CallsCSVPath: filepath.Join(dir, "calls.csv")},
		"sqlite": {Backend: configs.BackendSQLite, SQLitePath: filepath.Join(dir, "calls.db")},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := openCallRepository(cfg, logger, true)
			require.NoError(t, err)
			defer repo.Close()

			require.NoError(t, repo.Ping(ctx))
			require.NoError(t, repo.Append(ctx, &model.CallRecord{MCNumber: "MC1"}))
			records, err := repo.Find(ctx, model.CallFilter{})
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestMigrateOrCloseReleasesDatabaseOnFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := configs.StorageConfig{
		Backend:    configs.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "calls.db"),
	}

	db, err := storage.Open(cfg, logger)
	require.NoError(t, err)
	// a pre-existing table without the indexed columns makes the migration fail
	require.NoError(t, db.Exec("CREATE TABLE call_records (id INTEGER PRIMARY KEY)").Error)

	require.Error(t, migrateOrClose(db, cfg.Backend, logger))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestMigrateOrCloseKeepsDatabaseOnSuccess(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := configs.StorageConfig{
		Backend:    configs.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "calls.db"),
	}

	db, err := storage.Open(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, migrateOrClose(db, cfg.Backend, logger))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}

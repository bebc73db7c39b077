// Package storage opens the SQL databases behind the call log and applies their schema.
package storage

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/navid-fn/carrier-sales/configs"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/clickhouse"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// gooseDialects maps a storage backend to its goose dialect.
var gooseDialects = map[string]string{
	configs.BackendSQLite:     "sqlite3",
	configs.BackendClickHouse: "clickhouse",
}

// Open connects to the SQL backend named by cfg.Backend and verifies the connection.
// The csv backend has no database and is rejected.
func Open(cfg configs.StorageConfig, logger logrus.FieldLogger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Backend {
	case configs.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.SQLitePath)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Info("Connected to SQLite")

	case configs.BackendClickHouse:
		opts, err := ch.ParseDSN(cfg.ClickHouseDSN)
		if err != nil {
			return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
		}
		db, err = gorm.Open(clickhouse.Open(cfg.ClickHouseDSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open clickhouse: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"addr":     strings.Join(opts.Addr, ","),
			"database": opts.Auth.Database,
		}).Info("Connected to ClickHouse")

	default:
		return nil, fmt.Errorf("backend %q is not a SQL backend", cfg.Backend)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Backend == configs.BackendSQLite {
		// One writer at a time; sqlite serializes writes anyway.
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Backend, err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations for backend.
func Migrate(db *gorm.DB, backend string, logger logrus.FieldLogger) error {
	dialect, ok := gooseDialects[backend]
	if !ok {
		return fmt.Errorf("backend %q has no migrations", backend)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: set dialect: %w", err)
	}

	logger.WithField("backend", backend).Info("Running database migrations...")
	if err := goose.Up(sqlDB, "migrations/"+backend); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.Info("Migrations completed successfully")
	return nil
}

func sqliteDSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

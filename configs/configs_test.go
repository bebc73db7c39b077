package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "ACME_API_KEY", "LOG_LEVEL", "LOADS_CSV_PATH", "PORT", "GIN_MODE",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CALLS_BACKEND", "CALL_METRICS_CSV", "SQLITE_PATH",
		"CLICKHOUSE_HOST", "SALES_WEBHOOK_URL", "KAFKA_BROKER", "KAFKA_HANDOFF_TOPIC",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestAppLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := AppLoad()
	require.NoError(t, err)

	assert.Equal(t, "testkey123", cfg.APIKey)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, "./data/call_metrics.csv", cfg.Storage.CallsCSVPath)
	assert.Equal(t, 0.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, "carrier_sales_handoffs", cfg.Handoff.KafkaTopic)
	assert.Contains(t, cfg.Storage.ClickHouseDSN, "clickhouse://default:@localhost:9000/default")
}

func TestAppLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACME_API_KEY", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("CALLS_BACKEND", "SQLite")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := AppLoad()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst, "invalid ints fall back to the default")
}

func TestAppLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
loads_csv_path: /srv/loads.csv
server:
  port: "7000"
storage:
  backend: clickhouse
  clickhouse_dsn: clickhouse://u:p@ch:9000/calls
handoff:
  webhook_url: http://sales.example/hook
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := AppLoad()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "/srv/loads.csv", cfg.LoadsCSVPath)
	assert.Equal(t, "7001", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, BackendClickHouse, cfg.Storage.Backend)
	assert.Equal(t, "clickhouse://u:p@ch:9000/calls", cfg.Storage.ClickHouseDSN)
	assert.Equal(t, "http://sales.example/hook", cfg.Handoff.WebhookURL)
	assert.Equal(t, 20, cfg.Server.RateLimitBurst, "unset file keys keep defaults")
}

func TestAppLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALLS_BACKEND", "postgres")

	_, err := AppLoad()
	assert.Error(t, err)
}

func TestAppLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := AppLoad()
	assert.Error(t, err)
}

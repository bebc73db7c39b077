// Package configs provides application configuration loaded from environment variables.
// An optional YAML file (CONFIG_FILE) supplies defaults; environment variables always win.
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Call record storage backends.
const (
	BackendCSV        = "csv"
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// APIKey is the shared secret every protected route expects in the x-api-key header.
	APIKey string `yaml:"api_key"`

	// LogLevel is a logrus level name ("debug", "info", ...).
	LogLevel string `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`

	// LoadsCSVPath is the load catalog file read once at startup.
	LoadsCSVPath string `yaml:"loads_csv_path"`

	Storage StorageConfig `yaml:"storage"`

	Handoff HandoffConfig `yaml:"handoff"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// GinMode is "debug", "release" or "test".
	GinMode string `yaml:"gin_mode"`

	// RateLimitRPS is the global request budget per second. 0 disables limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// RateLimitBurst is the token bucket size used with RateLimitRPS.
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

// StorageConfig selects and configures the call record store.
type StorageConfig struct {
	// Backend is one of "csv", "sqlite" or "clickhouse".
	Backend string `yaml:"backend"`

	// CallsCSVPath is the flat file used by the csv backend.
	CallsCSVPath string `yaml:"calls_csv_path"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// ClickHouseDSN is built from the CLICKHOUSE_* variables.
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// HandoffConfig holds the sinks a sales transfer is forwarded to.
// With nothing configured transfers are only logged.
type HandoffConfig struct {
	// WebhookURL receives a JSON POST per transfer.
	WebhookURL string `yaml:"webhook_url"`

	// KafkaBroker is the Kafka broker address (e.g., "localhost:9092").
	KafkaBroker string `yaml:"kafka_broker"`

	// KafkaTopic is the topic transfers are produced to.
	KafkaTopic string `yaml:"kafka_topic"`
}

// defaults returns the configuration used when neither a file nor the environment sets a value.
func defaults() AppConfig {
	return AppConfig{
		APIKey:       "testkey123",
		LogLevel:     "info",
		LoadsCSVPath: "./data/sample_loads.csv",
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "release",
			RateLimitRPS:   0,
			RateLimitBurst: 20,
		},
		Storage: StorageConfig{
			Backend:      BackendCSV,
			CallsCSVPath: "./data/call_metrics.csv",
			SQLitePath:   "./data/call_metrics.db",
		},
		Handoff: HandoffConfig{
			KafkaTopic: "carrier_sales_handoffs",
		},
	}
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN(fallback string) string {
	if _, ok := os.LookupEnv("CLICKHOUSE_HOST"); !ok && fallback != "" {
		return fallback
	}
	dbUser := getEnv("CLICKHOUSE_USER", "default")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "default")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// AppLoad loads all application configuration.
// It attempts to load a .env file first (for local development), then the optional
// YAML file named by CONFIG_FILE, then the environment.
func AppLoad() (*AppConfig, error) {
	_ = godotenv.Load() // Ignore error - .env is optional

	cfg := defaults()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.APIKey = getEnv("ACME_API_KEY", cfg.APIKey)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LoadsCSVPath = getEnv("LOADS_CSV_PATH", cfg.LoadsCSVPath)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Server.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.Server.RateLimitRPS)
	cfg.Server.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.Server.RateLimitBurst)

	cfg.Storage.Backend = strings.ToLower(getEnv("CALLS_BACKEND", cfg.Storage.Backend))
	cfg.Storage.CallsCSVPath = getEnv("CALL_METRICS_CSV", cfg.Storage.CallsCSVPath)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.ClickHouseDSN = getDatabaseDSN(cfg.Storage.ClickHouseDSN)

	cfg.Handoff.WebhookURL = getEnv("SALES_WEBHOOK_URL", cfg.Handoff.WebhookURL)
	cfg.Handoff.KafkaBroker = getEnv("KAFKA_BROKER", cfg.Handoff.KafkaBroker)
	cfg.Handoff.KafkaTopic = getEnv("KAFKA_HANDOFF_TOPIC", cfg.Handoff.KafkaTopic)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that cannot be served.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendCSV, BackendSQLite, BackendClickHouse:
	default:
		return fmt.Errorf("unknown calls backend %q", c.Storage.Backend)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key must not be empty")
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StorageBackendSheets   = "sheets"
	StorageBackendRedis    = "redis"
	StorageBackendPostgres = "postgres"
	StorageBackendSQLite   = "sqlite"
	StorageBackendMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// progress storage
	StorageBackend  string `toml:"storage_backend"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	// google sheets: the spreadsheet is found by name if no id is given
	SpreadsheetID   string `toml:"spreadsheet_id"`
	SpreadsheetName string `toml:"spreadsheet_name"`
	SheetCell       string `toml:"sheet_cell"`
	// redis (also backs the write rate limiter when set)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	RedisKey  string `toml:"redis_key"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	// sqlite
	SQLitePath string `toml:"sqlite_path"`
	// slot name used by the sql backends
	SlotName string `toml:"slot_name"`

	// http
	AllowedOrigins          []string `toml:"allowed_origins"`
	WriteRateLimitPerMinute int      `toml:"write_rate_limit_per_min"`

	// backups
	DriveBackupFolder    string `toml:"drive_backup_folder"`
	DriveBackupShareWith string `toml:"drive_backup_share_with"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] not found", env)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageBackendSheets
	}
	if c.SheetCell == "" {
		c.SheetCell = "Sheet1!A1"
	}
	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		c.SpreadsheetName = "fitness_db"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.RedisKey == "" {
		c.RedisKey = "elite30-progress"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.SlotName == "" {
		c.SlotName = "progress"
	}
	if c.DriveBackupFolder == "" {
		c.DriveBackupFolder = "elite30-progress-backup"
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("%w: port must be positive, got %d", ErrInvalidConfig, c.Port)
	}

	switch c.StorageBackend {
	case StorageBackendSheets, StorageBackendMemory:
	case StorageBackendRedis:
		if c.RedisHost == "" {
			return fmt.Errorf("%w: redis backend requires redis_host", ErrInvalidConfig)
		}
	case StorageBackendPostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return fmt.Errorf("%w: postgres backend requires postgres_host and postgres_db_name", ErrInvalidConfig)
		}
	case StorageBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite backend requires sqlite_path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend [%s]", ErrInvalidConfig, c.StorageBackend)
	}

	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: cache_ttl_seconds cannot be negative", ErrInvalidConfig)
	}

	return nil
}

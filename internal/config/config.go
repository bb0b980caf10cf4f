package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrecipitationSince = "2016-08-23"
	DefaultActiveStation      = "USC00519281"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// LogSQL wraps the sqlite3 driver so every statement is logged at debug level.
	LogSQL bool

	// PrecipitationSince is the lower date bound (inclusive, yyyy-mm-dd) for
	// the precipitation and temperature listings.
	PrecipitationSince string
	ActiveStation      string

	MetricsEnabled bool
}

// fileConfig mirrors the environment keys so a YAML file can supply defaults.
type fileConfig map[string]string

// LoadFromEnv builds a Config from the process environment. A .env file in
// the working directory is loaded first (existing variables win) and, when
// CONFIG_FILE is set, its YAML keys fill in anything still unset.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	defaults, err := loadFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}
	get := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(defaults[key])
	}

	appEnv := get("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := get("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := get("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	driver := get("DB_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}
	switch driver {
	case "sqlite3", "sqlite", "mysql":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, sqlite, mysql)", driver)
	}
	dsn := get("DB_DSN")
	if driver == "mysql" && dsn == "" {
		return Config{}, errors.New("DB_DSN is required when DB_DRIVER=mysql")
	}
	path := get("SQLITE_PATH")
	if path == "" {
		path = "Resources/hawaii.sqlite"
	}

	maxOpenConnsStr := get("DB_MAX_OPEN_CONNS")
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := get("DB_MAX_IDLE_CONNS")
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := get("DB_CONN_MAX_LIFETIME")
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logSQL, err := parseBool("DB_LOG_SQL", get("DB_LOG_SQL"), false)
	if err != nil {
		return Config{}, err
	}

	since := get("PRECIPITATION_SINCE")
	if since == "" {
		since = DefaultPrecipitationSince
	}
	if _, err := time.Parse(time.DateOnly, since); err != nil {
		return Config{}, fmt.Errorf("invalid PRECIPITATION_SINCE %q (expected yyyy-mm-dd): %w", since, err)
	}

	station := get("ACTIVE_STATION")
	if station == "" {
		station = DefaultActiveStation
	}

	metricsEnabled, err := parseBool("METRICS_ENABLED", get("METRICS_ENABLED"), true)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		HTTPAddr:           httpAddr,
		Driver:             driver,
		DSN:                dsn,
		Path:               path,
		MaxOpenConns:       maxOpenConns,
		MaxIdleConns:       maxIdleConns,
		ConnMaxLifetime:    connMaxLifetime,
		LogSQL:             logSQL,
		PrecipitationSince: since,
		ActiveStation:      station,
		MetricsEnabled:     metricsEnabled,
	}, nil
}

func loadFile(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
	}
	out := fileConfig{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
	}
	return out, nil
}

func parseBool(key, s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

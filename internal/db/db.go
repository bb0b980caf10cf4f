package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"climate-gateway/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Open returns a pooled handle for the configured driver and verifies
// connectivity. The returned *sql.DB is the only process-wide database state.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL && cfg.Driver == "sqlite3" {
		connector, err := NewLoggingConnector(dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	var params []string
	switch cfg.Driver {
	case "sqlite3":
		params = []string{
			"_busy_timeout=5000",
			"_query_only=true",
		}
	case "sqlite":
		params = []string{
			"_pragma=busy_timeout(5000)",
			"_pragma=query_only(1)",
		}
	default:
		return "", fmt.Errorf("DB_DSN is required for driver %q", cfg.Driver)
	}

	path := cfg.Path
	if err := checkSQLiteFile(path); err != nil {
		return "", err
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// checkSQLiteFile rejects a missing database file up front; both sqlite
// drivers would otherwise create an empty one.
func checkSQLiteFile(path string) error {
	name := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == ":memory:" {
		return nil
	}
	if _, err := os.Stat(name); err != nil {
		return fmt.Errorf("sqlite database %q: %w", name, err)
	}
	return nil
}

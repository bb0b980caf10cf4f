package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"climate-gateway/internal/dataset"
	"climate-gateway/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

const usage = `usage: %s <command> [args]
  migrate          apply pending schema/station migrations
  import <csv>     load measurement rows (station,date,prcp,tobs) from a CSV file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "Resources/hawaii.sqlite"
	}
	dbPath = filepath.Clean(dbPath)

	conn, err := Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		applied, err := migrate.Run(ctx, conn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("migrations applied: %d\n", len(applied))
	case "import":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
			os.Exit(1)
		}
		n, err := importFile(ctx, conn, os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "import: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("measurements imported: %d\n", n)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func importFile(ctx context.Context, conn *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return dataset.ImportMeasurements(ctx, conn, f)
}

func Open(dbPath string) (*sql.DB, error) {
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", buildDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func buildDSN(dbPath string) string {
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(dbPath, "file:") {
		sep := "?"
		if strings.Contains(dbPath, "?") {
			sep = "&"
		}
		return dbPath + sep + strings.Join(params, "&")
	}

	return fmt.Sprintf("file:%s?%s", dbPath, strings.Join(params, "&"))
}

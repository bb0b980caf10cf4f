package dataset

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"climate-gateway/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "hawaii.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countMeasurements(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM measurement`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestImportMeasurements(t *testing.T) {
	db := setupTestDB(t)
	in := strings.NewReader(`date,station,tobs,prcp,extra
2010-01-01,USC00519397,65,0.08,x
2016-08-23, USC00513117 ,76,,y
`)

	n, err := ImportMeasurements(context.Background(), db, in)
	if err != nil {
		t.Fatalf("ImportMeasurements: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d; want 2", n)
	}

	var prcp sql.NullFloat64
	var tobs float64
	err = db.QueryRow(`SELECT prcp, tobs FROM measurement WHERE station = 'USC00513117'`).Scan(&prcp, &tobs)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if prcp.Valid {
		t.Errorf("prcp = %v; want NULL", prcp.Float64)
	}
	if tobs != 76 {
		t.Errorf("tobs = %v; want 76", tobs)
	}
}

func TestImportMeasurements_rejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{"empty", ``, "missing header"},
		{"missing column", "station,date,prcp\nUSC00519397,2010-01-01,0.1\n", `missing column "tobs"`},
		{"bad date", "station,date,prcp,tobs\nUSC00519397,01/01/2010,0.1,65\n", "line 2: invalid date"},
		{"bad tobs", "station,date,prcp,tobs\nUSC00519397,2010-01-01,0.1,\n", "line 2: invalid tobs"},
		{"bad prcp", "station,date,prcp,tobs\nUSC00519397,2010-01-01,wet,65\n", "line 2: invalid prcp"},
		{"empty station", "station,date,prcp,tobs\n,2010-01-01,0.1,65\n", "empty station"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			_, err := ImportMeasurements(context.Background(), db, strings.NewReader(tt.csv))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v; want containing %q", err, tt.wantErr)
			}
			if got := countMeasurements(t, db); got != 0 {
				t.Errorf("rows after failed import = %d; want 0", got)
			}
		})
	}
}

func TestImportMeasurements_failureRollsBackEarlierRows(t *testing.T) {
	db := setupTestDB(t)
	in := strings.NewReader("station,date,prcp,tobs\nUSC00519397,2010-01-01,0.1,65\nUSC00519397,2010-01-02,0.1,oops\n")

	if _, err := ImportMeasurements(context.Background(), db, in); err == nil {
		t.Fatal("expected error")
	}
	if got := countMeasurements(t, db); got != 0 {
		t.Errorf("rows = %d; want 0", got)
	}
}

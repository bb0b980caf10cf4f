// Package dataset loads raw climate observations into a local store created
// by the migrate package.
package dataset

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var requiredColumns = []string{"station", "date", "prcp", "tobs"}

const insertMeasurement = `INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`

// ImportMeasurements reads a CSV with a header row naming at least station,
// date, prcp and tobs (any order, extra columns ignored) and inserts every row
// in a single transaction. An empty prcp cell is stored as NULL. It returns
// the number of rows inserted.
func ImportMeasurements(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, errors.New("csv: missing header row")
		}
		return 0, fmt.Errorf("csv header: %w", err)
	}
	idx, err := columnIndex(head)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertMeasurement)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	n := 0
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		m, err := parseRow(rec, idx)
		if err != nil {
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		if _, err := stmt.ExecContext(ctx, m.station, m.date, m.prcp, m.tobs); err != nil {
			return 0, fmt.Errorf("insert line %d: %w", line, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

type measurement struct {
	station string
	date    string
	prcp    sql.NullFloat64
	tobs    float64
}

func columnIndex(head []string) (map[string]int, error) {
	idx := make(map[string]int, len(head))
	for i, h := range head {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("csv header: missing column %q", col)
		}
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int) (measurement, error) {
	get := func(col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	m := measurement{station: get("station"), date: get("date")}
	if m.station == "" {
		return measurement{}, errors.New("empty station")
	}
	if _, err := time.Parse(time.DateOnly, m.date); err != nil {
		return measurement{}, fmt.Errorf("invalid date %q (expected yyyy-mm-dd)", m.date)
	}
	if s := get("prcp"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return measurement{}, fmt.Errorf("invalid prcp %q: %w", s, err)
		}
		m.prcp = sql.NullFloat64{Float64: v, Valid: true}
	}
	s := get("tobs")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return measurement{}, fmt.Errorf("invalid tobs %q: %w", s, err)
	}
	m.tobs = v
	return m, nil
}

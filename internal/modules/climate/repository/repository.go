package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"climate-gateway/internal/modules/climate/types"
)

//go:embed sql/precipitation-since.sql
var precipitationSinceSQL string

//go:embed sql/station-ids.sql
var stationIDsSQL string

//go:embed sql/observations-since.sql
var observationsSinceSQL string

//go:embed sql/summary-from.sql
var summaryFromSQL string

//go:embed sql/summary-range.sql
var summaryRangeSQL string

//go:embed sql/date-bounds.sql
var dateBoundsSQL string

// ClimateRepository hands out per-request sessions over the shared pool.
type ClimateRepository interface {
	Open(ctx context.Context) (Session, error)
}

// Session is a single dedicated connection. Callers must Close it.
type Session interface {
	Precipitation(ctx context.Context, since string) ([]types.Precipitation, error)
	StationIDs(ctx context.Context) ([]string, error)
	Observations(ctx context.Context, station string, since string) ([]types.Observation, error)
	// Summary aggregates tobs over date >= start, and date <= end when end is not empty.
	Summary(ctx context.Context, start string, end string) (types.Summary, error)
	DateBounds(ctx context.Context) (types.DateBounds, error)
	Close() error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Open(ctx context.Context) (Session, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{conn: conn}, nil
}

type session struct {
	conn *sql.Conn
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) Precipitation(ctx context.Context, since string) ([]types.Precipitation, error) {
	rows, err := s.conn.QueryContext(ctx, precipitationSinceSQL, since)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "precipitation")

	out := []types.Precipitation{}
	for rows.Next() {
		var (
			rec  types.Precipitation
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&rec.Date, &prcp); err != nil {
			return nil, err
		}
		if prcp.Valid {
			rec.Prcp = &prcp.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *session) StationIDs(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, stationIDsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "stations")

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *session) Observations(ctx context.Context, station string, since string) ([]types.Observation, error) {
	rows, err := s.conn.QueryContext(ctx, observationsSinceSQL, station, since)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "observations")

	out := []types.Observation{}
	for rows.Next() {
		var rec types.Observation
		if err := rows.Scan(&rec.Date, &rec.Tobs, &rec.Station); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *session) Summary(ctx context.Context, start string, end string) (types.Summary, error) {
	var row *sql.Row
	if end == "" {
		row = s.conn.QueryRowContext(ctx, summaryFromSQL, start)
	} else {
		row = s.conn.QueryRowContext(ctx, summaryRangeSQL, start, end)
	}

	var lo, avg, hi sql.NullFloat64
	if err := row.Scan(&lo, &avg, &hi); err != nil {
		return types.Summary{}, err
	}
	return types.Summary{
		Min:     nullable(lo),
		Average: nullable(avg),
		Max:     nullable(hi),
	}, nil
}

func (s *session) DateBounds(ctx context.Context) (types.DateBounds, error) {
	var first, last sql.NullString
	if err := s.conn.QueryRowContext(ctx, dateBoundsSQL).Scan(&first, &last); err != nil {
		return types.DateBounds{}, err
	}
	return types.DateBounds{First: first.String, Last: last.String}, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}

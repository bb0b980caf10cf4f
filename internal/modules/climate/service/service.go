package service

import (
	"context"
	"fmt"
	"log/slog"

	"climate-gateway/internal/modules/climate/repository"
	"climate-gateway/internal/modules/climate/types"
)

// ClimateService is what the HTTP layer depends on.
type ClimateService interface {
	Precipitation(ctx context.Context) ([]types.Precipitation, error)
	Stations(ctx context.Context) ([]string, error)
	Temperatures(ctx context.Context) ([]types.Observation, error)
	SummaryFrom(ctx context.Context, start string) ([]types.Summary, error)
	SummaryRange(ctx context.Context, start, end string) ([]types.Summary, error)
}

type Options struct {
	// Since is the inclusive lower date bound for the listings.
	Since string
	// Station is the station reported by Temperatures.
	Station string
}

type Service struct {
	repository repository.ClimateRepository
	opts       Options
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repository: repository,
		opts:       opts,
		logger:     logger.With("component", "climate"),
	}
}

// withSession runs fn on a fresh session and always releases it before
// returning.
func (s *Service) withSession(ctx context.Context, fn func(repository.Session) error) error {
	sess, err := s.repository.Open(ctx)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			s.logger.Error("close session", "error", err)
		}
	}()
	return fn(sess)
}

func (s *Service) Precipitation(ctx context.Context) ([]types.Precipitation, error) {
	var out []types.Precipitation
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		out, err = sess.Precipitation(ctx, s.opts.Since)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("precipitation since %s: %w", s.opts.Since, err)
	}
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]string, error) {
	var out []string
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		out, err = sess.StationIDs(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	return out, nil
}

// Temperatures lists observations for the configured station on or after
// the configured date.
func (s *Service) Temperatures(ctx context.Context) ([]types.Observation, error) {
	var out []types.Observation
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		out, err = sess.Observations(ctx, s.opts.Station, s.opts.Since)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("temperatures for %s: %w", s.opts.Station, err)
	}
	return out, nil
}

// SummaryFrom aggregates temperatures on or after start. A *RangeError is
// returned when start precedes the first record or nothing matched.
func (s *Service) SummaryFrom(ctx context.Context, start string) ([]types.Summary, error) {
	bounds, summary, err := s.summarize(ctx, start, "")
	if err != nil {
		return nil, fmt.Errorf("summary from %s: %w", start, err)
	}

	if !bounds.Empty() && bounds.First > start {
		return nil, tooEarly(start, bounds.First)
	}
	if summary.Min == nil {
		return nil, startNotFound(start)
	}
	return []types.Summary{summary}, nil
}

// SummaryRange aggregates temperatures in [start, end]. Checks run in order:
// start before the first record, end after the last record, empty result.
func (s *Service) SummaryRange(ctx context.Context, start, end string) ([]types.Summary, error) {
	bounds, summary, err := s.summarize(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("summary %s..%s: %w", start, end, err)
	}

	if !bounds.Empty() {
		if bounds.First > start {
			return nil, tooEarly(start, bounds.First)
		}
		if bounds.Last < end {
			return nil, tooRecent(end, bounds.Last)
		}
	}
	if summary.Min == nil {
		return nil, rangeNotFound()
	}
	return []types.Summary{summary}, nil
}

func (s *Service) summarize(ctx context.Context, start, end string) (types.DateBounds, types.Summary, error) {
	var (
		bounds  types.DateBounds
		summary types.Summary
	)
	err := s.withSession(ctx, func(sess repository.Session) error {
		var err error
		if summary, err = sess.Summary(ctx, start, end); err != nil {
			return err
		}
		bounds, err = sess.DateBounds(ctx)
		return err
	})
	return bounds, summary, err
}

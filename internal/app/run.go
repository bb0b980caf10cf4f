package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"climate-gateway/internal/config"
	db "climate-gateway/internal/db"
	httpapi "climate-gateway/internal/httpapi"
	climate "climate-gateway/internal/modules/climate"
	climateviews "climate-gateway/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dbMaxOpenConns", cfg.MaxOpenConns,
		"dbMaxIdleConns", cfg.MaxIdleConns,
		"dbConnMaxLifetime", cfg.ConnMaxLifetime,
		"dbLogSQL", cfg.LogSQL,
		"precipitationSince", cfg.PrecipitationSince,
		"activeStation", cfg.ActiveStation,
		"metricsEnabled", cfg.MetricsEnabled,
	)
	dbConn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	slog.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	srv := httpapi.NewServer(cfg, NewHandler(cfg, dbConn, slog.Default()))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// NewHandler builds the routed, instrumented handler served by Run.
// Templates must already be loaded.
func NewHandler(cfg config.Config, dbConn *sql.DB, logger *slog.Logger) http.Handler {
	var registry *prometheus.Registry
	var metrics *httpapi.Metrics
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = httpapi.NewMetrics(registry)
	}

	mux := httpapi.NewMux(dbConn, registry)
	climate.RegisterFeature(mux, dbConn, cfg, logger)

	mws := []func(http.Handler) http.Handler{httpapi.RequestID}
	if metrics != nil {
		mws = append(mws, metrics.Middleware)
	}
	mws = append(mws, httpapi.RequestLogger(logger))
	return httpapi.Chain(mux, mws...)
}

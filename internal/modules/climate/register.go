package climate

import (
	"database/sql"
	"log/slog"
	"net/http"

	"climate-gateway/internal/config"
	"climate-gateway/internal/modules/climate/controller"
	"climate-gateway/internal/modules/climate/repository"
	"climate-gateway/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, logger *slog.Logger) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository, service.Options{
		Since:   cfg.PrecipitationSince,
		Station: cfg.ActiveStation,
	}, logger)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}

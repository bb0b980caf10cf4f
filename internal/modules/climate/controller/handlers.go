package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"climate-gateway/internal/modules/climate/service"
	"climate-gateway/internal/modules/climate/types"
	"climate-gateway/internal/modules/climate/views"
	"climate-gateway/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	data := &views.WelcomeData{Title: "Hawaii climate API"}
	for _, rt := range c.routes() {
		if rt.path == "/{$}" {
			continue
		}
		data.Routes = append(data.Routes, views.RouteLink{Path: rt.path, Description: rt.description})
	}
	utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderWelcome(out, data)
	})
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	records, err := c.service.Precipitation(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, records)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTemperatures(w http.ResponseWriter, r *http.Request) {
	observations, err := c.service.Temperatures(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleSummaryFrom(w http.ResponseWriter, r *http.Request) {
	summary, err := c.service.SummaryFrom(r.Context(), r.PathValue("start"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (c *climateControllerImpl) handleSummaryRange(w http.ResponseWriter, r *http.Request) {
	summary, err := c.service.SummaryRange(r.Context(), r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// writeServiceError maps range errors to 404 {"error": ...}; anything else is
// a store failure and becomes a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rangeErr *service.RangeError
	if errors.As(err, &rangeErr) {
		slog.Debug("date range rejected", "path", r.URL.Path, "reason", rangeErr.Reason)
		utils.WriteJSON(w, http.StatusNotFound, types.ErrorResponse{Error: rangeErr.Message})
		return
	}
	slog.Error("climate query failed", "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to query climate data")
}

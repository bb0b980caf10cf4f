package controller

import (
	"net/http"

	"climate-gateway/internal/modules/climate/service"
)

const apiPrefix = "/api/v1.0"

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service service.ClimateService
}

func NewClimateController(service service.ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

type route struct {
	method      string
	path        string
	description string
	handler     http.HandlerFunc
}

func (rt route) pattern() string {
	return rt.method + " " + rt.path
}

// routes is the full routing table. The welcome page renders the same table.
func (c *climateControllerImpl) routes() []route {
	return []route{
		{http.MethodGet, "/{$}", "Route index", c.handleWelcome},
		{http.MethodGet, apiPrefix + "/precipitation", "Daily rainfall (mm) record set", c.handlePrecipitation},
		{http.MethodGet, apiPrefix + "/stations", "Weather stations", c.handleStations},
		{http.MethodGet, apiPrefix + "/temperatures", "Daily temperatures for the most active station", c.handleTemperatures},
		{http.MethodGet, apiPrefix + "/start/{start}", "Summary from a start date (yyyy-mm-dd)", c.handleSummaryFrom},
		{http.MethodGet, apiPrefix + "/start_end/{start}/{end}", "Summary between a start and end date (yyyy-mm-dd)", c.handleSummaryRange},
	}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	for _, rt := range c.routes() {
		mux.HandleFunc(rt.pattern(), rt.handler)
	}
}

package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux returns the base mux with the operational routes. Feature modules
// register their own routes on it afterwards. A nil registry leaves /metrics
// unregistered.
func NewMux(db *sql.DB, registry *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}
	return mux
}

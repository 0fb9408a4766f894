package api

import (
	"net/http"

	"github.com/Uri-do/monitoringgrid/internal/metrics"

	"github.com/gorilla/mux"
)

// RegisterRoutes builds the router. Instrumentation runs inside mux so
// route templates are available; recovery wraps everything.
func RegisterRoutes(h *Handler, m *metrics.Metrics) http.Handler {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(Instrument(m)))

	// Indicator APIs
	r.HandleFunc("/api/indicators", h.ListIndicators).Methods(http.MethodGet)
	r.HandleFunc("/api/indicators", h.CreateIndicator).Methods(http.MethodPost)
	r.HandleFunc("/api/indicators/{id}", h.GetIndicator).Methods(http.MethodGet)
	r.HandleFunc("/api/indicators/{id}", h.DeleteIndicator).Methods(http.MethodDelete)
	r.HandleFunc("/api/indicators/{id}/execute", h.ExecuteIndicator).Methods(http.MethodPost)

	// Alert APIs
	r.HandleFunc("/api/alerts", h.ListAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/{id}/resolve", h.ResolveAlert).Methods(http.MethodPost)

	// Analytics APIs
	r.HandleFunc("/api/analytics/dashboard", h.GetDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/analytics/health", h.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/analytics/scores", h.GetScores).Methods(http.MethodGet)
	r.HandleFunc("/api/analytics/series", h.GetSeries).Methods(http.MethodGet)
	r.HandleFunc("/api/analytics/trend/{id}", h.GetTrend).Methods(http.MethodGet)

	// Observability APIs
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/admin/logs", h.GetLogs).Methods(http.MethodGet)
	r.HandleFunc("/admin/channels", h.GetChannels).Methods(http.MethodGet)

	return Chain(r, Recovery(h.logger))
}

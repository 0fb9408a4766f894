package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/analytics"
	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/model"
	"github.com/Uri-do/monitoringgrid/internal/notify"
	"github.com/Uri-do/monitoringgrid/internal/scheduler"
	"github.com/Uri-do/monitoringgrid/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// defaultSeriesDays is the charting window when the client does not ask
// for one.
const defaultSeriesDays = 30

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	analytics *analytics.Service
	runner    *scheduler.Runner
	channels  *notify.ChannelManager
	logger    *logs.Logger
}

// NewHandler creates a new API handler.
func NewHandler(st *store.Store, svc *analytics.Service, runner *scheduler.Runner, channels *notify.ChannelManager, logger *logs.Logger) *Handler {
	return &Handler{
		store:     st,
		analytics: svc,
		runner:    runner,
		channels:  channels,
		logger:    logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

/* ---------------- POST /api/indicators ---------------- */

type createIndicatorRequest struct {
	Name             string  `json:"name"`
	Owner            string  `json:"owner"`
	FrequencyMinutes int     `json:"frequency_minutes"`
	CooldownMinutes  int     `json:"cooldown_minutes"`
	ThresholdPct     float64 `json:"threshold_pct"`
	Target           string  `json:"target"`
}

func (h *Handler) CreateIndicator(w http.ResponseWriter, r *http.Request) {
	var req createIndicatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.FrequencyMinutes <= 0 {
		http.Error(w, "frequency_minutes must be positive", http.StatusBadRequest)
		return
	}

	ind := model.Indicator{
		ID:               uuid.New(),
		Name:             req.Name,
		Owner:            req.Owner,
		Active:           true,
		FrequencyMinutes: req.FrequencyMinutes,
		CooldownMinutes:  req.CooldownMinutes,
		ThresholdPct:     req.ThresholdPct,
		Target:           req.Target,
	}
	if err := h.store.SaveIndicator(&ind); err != nil {
		h.logger.Error("api", "creating indicator failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, ind)
}

/* ---------------- GET /api/indicators ---------------- */

func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	inds, err := h.store.Indicators()
	if err != nil {
		h.logger.Error("api", "listing indicators failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if inds == nil {
		inds = []model.Indicator{}
	}
	writeJSON(w, http.StatusOK, inds)
}

/* ---------------- GET /api/indicators/{id} ---------------- */

func (h *Handler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ind, err := h.store.Indicator(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "indicator not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("api", "fetching indicator failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

/* ---------------- DELETE /api/indicators/{id} ---------------- */

func (h *Handler) DeleteIndicator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteIndicator(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "indicator not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("api", "deleting indicator failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- POST /api/indicators/{id}/execute ---------------- */

func (h *Handler) ExecuteIndicator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ind, err := h.store.Indicator(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "indicator not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("api", "fetching indicator failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	rec, err := h.runner.Execute(ctx, ind, time.Now())
	if err != nil {
		// the failed execution is already recorded; report it
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":     err.Error(),
			"execution": rec,
		})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

/* ---------------- GET /api/alerts ---------------- */

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	alerts, err := h.store.AlertsSince(time.Now().Add(-time.Duration(hours) * time.Hour))
	if err != nil {
		h.logger.Error("api", "listing alerts failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []model.AlertLog{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

/* ---------------- POST /api/alerts/{id}/resolve ---------------- */

func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.store.ResolveAlert(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "alert not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("api", "resolving alert failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- GET /api/analytics/dashboard ---------------- */

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultSeriesDays)
	dashboard, err := h.analytics.Dashboard(time.Now(), days)
	if err != nil {
		h.logger.Error("api", "building dashboard failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

/* ---------------- GET /api/analytics/health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.HealthReport(time.Now())
	if err != nil {
		h.logger.Error("api", "health report failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

/* ---------------- GET /api/analytics/scores ---------------- */

func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultSeriesDays)
	dashboard, err := h.analytics.Dashboard(time.Now(), days)
	if err != nil {
		h.logger.Error("api", "computing scores failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"indicator_scores": dashboard.IndicatorScores,
		"owner_scores":     dashboard.OwnerScores,
	})
}

/* ---------------- GET /api/analytics/series ---------------- */

func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultSeriesDays)
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "alerts"
	}

	now := time.Now()
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	var events []time.Time
	switch kind {
	case "alerts":
		alerts, err := h.store.AlertsSince(since)
		if err != nil {
			h.logger.Error("api", "listing alerts failed: "+err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		for _, a := range alerts {
			events = append(events, a.TriggeredAt)
		}
	case "executions":
		history, err := h.store.HistorySince(since)
		if err != nil {
			h.logger.Error("api", "listing history failed: "+err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		for _, rec := range history {
			events = append(events, rec.ExecutedAt)
		}
	default:
		http.Error(w, "kind must be alerts or executions", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, analytics.DailySeries(days, now, events))
}

/* ---------------- GET /api/analytics/trend/{id} ---------------- */

func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	days := queryInt(r, "days", defaultSeriesDays)

	direction, err := h.analytics.Trend(time.Now(), id.String(), days)
	if err != nil {
		h.logger.Error("api", "trend classification failed: "+err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indicator_id": id.String(), "trend": string(direction)})
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := queryInt(r, "n", 100)
	writeJSON(w, http.StatusOK, h.logger.GetLast(n))
}

/* ---------------- GET /admin/channels ---------------- */

func (h *Handler) GetChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.channels.Snapshot())
}

/* ---------------- helpers ---------------- */

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

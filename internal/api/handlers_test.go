package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/analytics"
	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
	"github.com/Uri-do/monitoringgrid/internal/model"
	"github.com/Uri-do/monitoringgrid/internal/notify"
	"github.com/Uri-do/monitoringgrid/internal/scheduler"
	"github.com/Uri-do/monitoringgrid/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ---------------- fixtures ---------------- */

type stubCollector struct {
	value float64
	err   error
}

func (c *stubCollector) Collect(ctx context.Context, ind model.Indicator) (float64, error) {
	return c.value, c.err
}

type dropSink struct{}

func (dropSink) Dispatch(ctx context.Context, alert model.AlertLog, ind model.Indicator) {}

type testEnv struct {
	server    *httptest.Server
	store     *store.Store
	collector *stubCollector
	logger    *logs.Logger
}

func setUpTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := logs.NewLogger(100, logs.DEBUG)
	m := metrics.New()
	collector := &stubCollector{value: 100}
	runner := scheduler.NewRunner(st, collector, dropSink{}, logger, m, time.Minute, 20)
	svc := analytics.NewService(st, logger)

	channels := notify.NewChannelManager(3, 2)
	channels.Add("http://hooks.internal/ops")

	h := NewHandler(st, svc, runner, channels, logger)
	server := httptest.NewServer(RegisterRoutes(h, m))
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: st, collector: collector, logger: logger}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) createIndicator(t *testing.T, name string) model.Indicator {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/indicators", map[string]any{
		"name":              name,
		"owner":             "ops",
		"frequency_minutes": 5,
		"threshold_pct":     20.0,
		"target":            "http://internal/metric",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[model.Indicator](t, resp)
}

/* ---------------- indicator CRUD ---------------- */

func TestIndicators_CreateAndGet(t *testing.T) {
	env := setUpTestServer(t)

	created := env.createIndicator(t, "checkout-latency")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Active)

	resp := env.do(t, http.MethodGet, "/api/indicators/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[model.Indicator](t, resp)
	assert.Equal(t, "checkout-latency", got.Name)
	assert.Equal(t, "ops", got.Owner)

	resp = env.do(t, http.MethodGet, "/api/indicators", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]model.Indicator](t, resp)
	assert.Len(t, list, 1)
}

func TestIndicators_CreateValidation(t *testing.T) {
	env := setUpTestServer(t)

	t.Run("missing name", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/indicators", map[string]any{
			"frequency_minutes": 5,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-positive frequency", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/indicators", map[string]any{
			"name": "bad",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/indicators", bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestIndicators_Delete(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "signup-rate")

	resp := env.do(t, http.MethodDelete, "/api/indicators/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/indicators/"+created.ID.String(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndicators_NotFoundAndBadID(t *testing.T) {
	env := setUpTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/indicators/"+uuid.NewString(), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/indicators/not-a-uuid", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

/* ---------------- execution ---------------- */

func TestExecuteIndicator(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "orders-per-minute")

	resp := env.do(t, http.MethodPost, "/api/indicators/"+created.ID.String()+"/execute", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[model.ExecutionRecord](t, resp)
	assert.True(t, rec.Success)
	assert.Equal(t, 100.0, rec.Value)
}

func TestExecuteIndicator_CollectorFailure(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "orders-per-minute")
	env.collector.err = fmt.Errorf("connection refused")

	resp := env.do(t, http.MethodPost, "/api/indicators/"+created.ID.String()+"/execute", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Contains(t, body["error"], "connection refused")
}

/* ---------------- alerts ---------------- */

func TestAlerts_ListAndResolve(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "error-rate")

	alert := model.AlertLog{
		IndicatorID: created.ID,
		TriggeredAt: time.Now().UTC(),
		Message:     "error-rate deviated 40.0% from baseline (threshold 20.0%)",
	}
	require.NoError(t, env.store.InsertAlert(&alert))

	resp := env.do(t, http.MethodGet, "/api/alerts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := decode[[]model.AlertLog](t, resp)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Resolved)

	resp = env.do(t, http.MethodPost, "/api/alerts/"+alert.ID.String()+"/resolve", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/alerts", nil)
	alerts = decode[[]model.AlertLog](t, resp)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Resolved)
}

func TestAlerts_EmptyListIsArray(t *testing.T) {
	env := setUpTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/alerts", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", buf.String())
}

/* ---------------- analytics ---------------- */

func TestGetHealth(t *testing.T) {
	env := setUpTestServer(t)
	env.createIndicator(t, "checkout-latency")

	resp := env.do(t, http.MethodGet, "/api/analytics/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[analytics.HealthReport](t, resp)

	// a freshly created indicator has never run, so it is overdue
	assert.Equal(t, 100.0, report.OverallHealthScore)
	assert.NotEmpty(t, report.Status)
	assert.NotEmpty(t, report.Summary)
}

func TestGetDashboard(t *testing.T) {
	env := setUpTestServer(t)
	env.createIndicator(t, "checkout-latency")

	resp := env.do(t, http.MethodGet, "/api/analytics/dashboard?days=7", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	dashboard := decode[analytics.Dashboard](t, resp)

	assert.Len(t, dashboard.AlertSeries, 7)
	assert.Len(t, dashboard.ExecutionSeries, 7)
	assert.Contains(t, dashboard.OwnerScores, "ops")
	assert.False(t, dashboard.GeneratedAt.IsZero())
}

func TestGetScores(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "checkout-latency")

	resp := env.do(t, http.MethodGet, "/api/analytics/scores", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]map[string]float64](t, resp)

	assert.Equal(t, 100.0, body["indicator_scores"][created.ID.String()])
	assert.Equal(t, 100.0, body["owner_scores"]["ops"])
}

func TestGetSeries(t *testing.T) {
	env := setUpTestServer(t)

	t.Run("alerts", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/analytics/series?days=7&kind=alerts", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		series := decode[[]analytics.SeriesPoint](t, resp)
		assert.Len(t, series, 7)
	})

	t.Run("executions", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/analytics/series?days=7&kind=executions", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		series := decode[[]analytics.SeriesPoint](t, resp)
		assert.Len(t, series, 7)
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/analytics/series?kind=bogus", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetTrend(t *testing.T) {
	env := setUpTestServer(t)
	created := env.createIndicator(t, "checkout-latency")

	resp := env.do(t, http.MethodGet, "/api/analytics/trend/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, string(analytics.TrendStable), body["trend"])
	assert.Equal(t, created.ID.String(), body["indicator_id"])
}

/* ---------------- observability ---------------- */

func TestGetLogs(t *testing.T) {
	env := setUpTestServer(t)
	env.logger.Info("test", "something happened")

	resp := env.do(t, http.MethodGet, "/admin/logs?n=10", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]logs.Entry](t, resp)
	require.NotEmpty(t, entries)
	assert.Equal(t, "something happened", entries[len(entries)-1].Message)
}

func TestGetChannels(t *testing.T) {
	env := setUpTestServer(t)

	resp := env.do(t, http.MethodGet, "/admin/channels", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	channels := decode[[]notify.Channel](t, resp)
	require.Len(t, channels, 1)
	assert.Equal(t, "http://hooks.internal/ops", channels[0].URL)
	assert.Equal(t, notify.ChannelHealthy, channels[0].State)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setUpTestServer(t)

	// drive one instrumented request first
	resp := env.do(t, http.MethodGet, "/api/indicators", nil)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/metrics", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http_requests_total")
}

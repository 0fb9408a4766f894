package retention

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
	"github.com/Uri-do/monitoringgrid/internal/model"
	"github.com/Uri-do/monitoringgrid/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "retention.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedAlert(t *testing.T, s *store.Store, indID uuid.UUID, at time.Time, resolved bool) uuid.UUID {
	t.Helper()
	a := model.AlertLog{
		IndicatorID: indID,
		TriggeredAt: at,
		Message:     "threshold breach",
	}
	require.NoError(t, s.InsertAlert(&a))
	if resolved {
		require.NoError(t, s.ResolveAlert(a.ID))
	}
	return a.ID
}

func TestPruner_RunOnce(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	ind := model.Indicator{ID: uuid.New(), Name: "checkout-latency", Owner: "ops", Active: true, FrequencyMinutes: 5}
	require.NoError(t, s.SaveIndicator(&ind))

	// two rows past the retention cutoff, one of them unresolved
	seedAlert(t, s, ind.ID, now.Add(-72*time.Hour), true)
	seedAlert(t, s, ind.ID, now.Add(-72*time.Hour), false)
	recentAlert := seedAlert(t, s, ind.ID, now.Add(-time.Hour), true)

	require.NoError(t, s.RecordExecution(model.ExecutionRecord{
		IndicatorID: ind.ID,
		ExecutedAt:  now.Add(-72 * time.Hour),
		Success:     true,
		Value:       10,
	}))
	require.NoError(t, s.RecordExecution(model.ExecutionRecord{
		IndicatorID: ind.ID,
		ExecutedAt:  now.Add(-time.Hour),
		Success:     true,
		Value:       12,
	}))

	p := NewPruner(s, time.Hour, 48*time.Hour, logs.NewLogger(100, logs.DEBUG), metrics.New())
	p.runOnce(now)

	alerts, err := s.AlertsSince(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Len(t, alerts, 2, "old resolved alert pruned, unresolved kept")
	ids := []uuid.UUID{alerts[0].ID, alerts[1].ID}
	assert.Contains(t, ids, recentAlert)

	history, err := s.HistorySince(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 12.0, history[0].Value)
}

func TestPruner_RunOnce_NothingToPrune(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	ind := model.Indicator{ID: uuid.New(), Name: "signup-rate", Owner: "growth", Active: true, FrequencyMinutes: 5}
	require.NoError(t, s.SaveIndicator(&ind))
	seedAlert(t, s, ind.ID, now.Add(-time.Hour), true)

	p := NewPruner(s, time.Hour, 48*time.Hour, logs.NewLogger(100, logs.DEBUG), metrics.New())
	p.runOnce(now)

	alerts, err := s.AlertsSince(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestPruner_StartStopsOnCancel(t *testing.T) {
	s := openTestStore(t)
	p := NewPruner(s, 5*time.Millisecond, time.Hour, logs.NewLogger(100, logs.DEBUG), metrics.New())

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		p.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
}

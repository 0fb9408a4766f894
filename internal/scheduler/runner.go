package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// Storage is the store surface the runner needs.
type Storage interface {
	DueIndicators(now time.Time) ([]model.Indicator, error)
	RecentValues(indicatorID uuid.UUID, limit int) ([]float64, error)
	RecordExecution(rec model.ExecutionRecord) error
	TouchLastRun(id uuid.UUID, t time.Time) error
	InsertAlert(a *model.AlertLog) error
	LastAlertTime(indicatorID uuid.UUID) (time.Time, bool, error)
}

// AlertSink receives raised alerts for delivery.
type AlertSink interface {
	Dispatch(ctx context.Context, alert model.AlertLog, ind model.Indicator)
}

// Runner executes due indicators on a fixed tick: collect the current
// value, compute the deviation against the recent baseline, record the
// execution, and raise an alert when the deviation breaches the
// indicator's threshold outside its cooldown window.
type Runner struct {
	store     Storage
	collector Collector
	sink      AlertSink
	logger    *logs.Logger
	metrics   *metrics.Metrics

	interval  time.Duration
	baselineN int
}

// NewRunner creates a scheduler runner. baselineN is the number of
// recent values averaged into the deviation baseline.
func NewRunner(store Storage, collector Collector, sink AlertSink, logger *logs.Logger, m *metrics.Metrics, interval time.Duration, baselineN int) *Runner {
	return &Runner{
		store:     store,
		collector: collector,
		sink:      sink,
		logger:    logger,
		metrics:   m,
		interval:  interval,
		baselineN: baselineN,
	}
}

// Start runs the scheduling loop until the context is cancelled. It
// blocks and should typically run in its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx, time.Now())
		case <-ctx.Done():
			r.logger.Debug("scheduler", "runner stopped")
			return
		}
	}
}

// runOnce executes every due indicator. A failure of one indicator
// never aborts the tick.
func (r *Runner) runOnce(ctx context.Context, now time.Time) {
	r.metrics.SchedulerRunsTotal.Inc()

	due, err := r.store.DueIndicators(now)
	if err != nil {
		r.logger.Error("scheduler", "fetching due indicators failed: "+err.Error())
		return
	}

	for _, ind := range due {
		if _, err := r.Execute(ctx, ind, now); err != nil {
			r.logger.Error("scheduler", fmt.Sprintf("indicator %s execution failed: %v", ind.Name, err))
		}
	}
}

// Execute runs a single indicator immediately and returns the recorded
// execution. It also backs the API's manual-run endpoint.
func (r *Runner) Execute(ctx context.Context, ind model.Indicator, now time.Time) (model.ExecutionRecord, error) {
	start := time.Now()
	value, collectErr := r.collector.Collect(ctx, ind)
	durationMs := time.Since(start).Milliseconds()

	rec := model.ExecutionRecord{
		IndicatorID: ind.ID,
		ExecutedAt:  now,
		Success:     collectErr == nil,
		DurationMs:  &durationMs,
		Value:       value,
	}

	if collectErr == nil {
		if baseline, ok, err := r.baseline(ind.ID); err != nil {
			return rec, err
		} else if ok {
			dev := (value - baseline) / math.Abs(baseline) * 100
			rec.Deviation = &dev
		}
	}

	if err := r.store.RecordExecution(rec); err != nil {
		return rec, err
	}
	if err := r.store.TouchLastRun(ind.ID, now); err != nil {
		return rec, err
	}

	if collectErr != nil {
		r.metrics.ExecutionsTotal.WithLabelValues("failure").Inc()
		return rec, collectErr
	}
	r.metrics.ExecutionsTotal.WithLabelValues("success").Inc()

	if rec.Deviation != nil && math.Abs(*rec.Deviation) >= ind.ThresholdPct {
		if err := r.raiseAlert(ctx, ind, rec, now); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// baseline averages the indicator's recent successful values. It
// reports ok=false when there is no history yet or the mean is zero,
// since no meaningful deviation can be computed against either.
func (r *Runner) baseline(id uuid.UUID) (float64, bool, error) {
	values, err := r.store.RecentValues(id, r.baselineN)
	if err != nil {
		return 0, false, err
	}
	if len(values) == 0 {
		return 0, false, nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0, false, nil
	}
	return mean, true, nil
}

// raiseAlert inserts an alert unless the indicator's cooldown window is
// still open, then hands it to the notification sink.
func (r *Runner) raiseAlert(ctx context.Context, ind model.Indicator, rec model.ExecutionRecord, now time.Time) error {
	if ind.CooldownMinutes > 0 {
		last, ok, err := r.store.LastAlertTime(ind.ID)
		if err != nil {
			return err
		}
		if ok && now.Sub(last) < time.Duration(ind.CooldownMinutes)*time.Minute {
			r.logger.Debug("scheduler", "cooldown active, suppressing alert for "+ind.Name)
			return nil
		}
	}

	alert := model.AlertLog{
		ID:          uuid.New(),
		IndicatorID: ind.ID,
		TriggeredAt: now,
		Deviation:   rec.Deviation,
		Message:     fmt.Sprintf("%s deviated %.1f%% from baseline (threshold %.1f%%)", ind.Name, *rec.Deviation, ind.ThresholdPct),
	}
	if err := r.store.InsertAlert(&alert); err != nil {
		return err
	}

	r.metrics.AlertsRaisedTotal.Inc()
	r.logger.Warn("scheduler", "alert raised for "+ind.Name)

	if r.sink != nil {
		r.sink.Dispatch(ctx, alert, ind)
	}
	return nil
}

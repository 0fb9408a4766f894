package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/model"
)

// alertWindow is the lookback used for in-error checks, issue counts and
// staleness.
const alertWindow = 24 * time.Hour

// DataSource is the read-side port the analytics layer pulls snapshots
// from. The SQLite store implements it; tests use in-memory fakes.
type DataSource interface {
	Indicators() ([]model.Indicator, error)
	AlertsSince(since time.Time) ([]model.AlertLog, error)
	HistorySince(since time.Time) ([]model.ExecutionRecord, error)
	DueIndicators(now time.Time) ([]model.Indicator, error)
	StaleIndicators(now time.Time, overdueBy time.Duration) ([]model.Indicator, error)
}

// Dashboard is the composite analytics object served to clients.
type Dashboard struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	Health          HealthReport       `json:"health"`
	Distribution    Distribution       `json:"distribution"`
	IndicatorScores map[string]float64 `json:"indicator_scores"`
	OwnerScores     map[string]float64 `json:"owner_scores"`
	AlertSeries     []SeriesPoint      `json:"alert_series"`
	ExecutionSeries []SeriesPoint      `json:"execution_series"`
}

// Service fetches fleet snapshots and runs the pure computations over
// them. Each call materializes its own private copies, so the service
// needs no locking of its own.
type Service struct {
	src    DataSource
	logger *logs.Logger
}

// NewService creates an analytics service over the given read port.
func NewService(src DataSource, logger *logs.Logger) *Service {
	return &Service{src: src, logger: logger}
}

// HealthReport evaluates current system health.
func (s *Service) HealthReport(now time.Time) (HealthReport, error) {
	snapshot, err := s.snapshot(now)
	if err != nil {
		return HealthReport{}, err
	}

	report := SystemHealth(snapshot)
	s.appendLogSignals(&report)
	return report, nil
}

// Dashboard assembles the full analytics view for the requested number
// of trailing calendar days. Indicator and owner scores are computed
// over that same window for both alerts and history; the health report
// and distribution keep their fixed 24h alert window.
func (s *Service) Dashboard(now time.Time, days int) (Dashboard, error) {
	snapshot, err := s.snapshot(now)
	if err != nil {
		return Dashboard{}, err
	}
	history, err := s.src.HistorySince(now.Add(-time.Duration(days) * 24 * time.Hour))
	if err != nil {
		return Dashboard{}, fmt.Errorf("fetching history: %w", err)
	}
	alerts, err := s.src.AlertsSince(now.Add(-time.Duration(days) * 24 * time.Hour))
	if err != nil {
		return Dashboard{}, fmt.Errorf("fetching alerts: %w", err)
	}

	report := SystemHealth(snapshot)
	s.appendLogSignals(&report)

	scores := make(map[string]float64, len(snapshot.Indicators))
	for id, score := range IndicatorScores(snapshot.Indicators, alerts, history) {
		scores[id.String()] = score
	}

	alertTimes := make([]time.Time, 0, len(alerts))
	for _, a := range alerts {
		alertTimes = append(alertTimes, a.TriggeredAt)
	}
	execTimes := make([]time.Time, 0, len(history))
	for _, h := range history {
		execTimes = append(execTimes, h.ExecutedAt)
	}

	return Dashboard{
		GeneratedAt:     now,
		Health:          report,
		Distribution:    Distribute(snapshot.Indicators, snapshot.Alerts, now),
		IndicatorScores: scores,
		OwnerScores:     OwnerScores(snapshot.Indicators, alerts, history),
		AlertSeries:     DailySeries(days, now, alertTimes),
		ExecutionSeries: DailySeries(days, now, execTimes),
	}, nil
}

// Trend classifies the deviation trend of a single indicator over its
// history from the last days calendar days.
func (s *Service) Trend(now time.Time, indicatorID string, days int) (TrendDirection, error) {
	history, err := s.src.HistorySince(now.Add(-time.Duration(days) * 24 * time.Hour))
	if err != nil {
		return TrendStable, fmt.Errorf("fetching history: %w", err)
	}

	var own []model.ExecutionRecord
	for _, h := range history {
		if h.IndicatorID.String() == indicatorID {
			own = append(own, h)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].ExecutedAt.Before(own[j].ExecutedAt) })
	return ClassifyTrend(own), nil
}

func (s *Service) snapshot(now time.Time) (FleetSnapshot, error) {
	inds, err := s.src.Indicators()
	if err != nil {
		return FleetSnapshot{}, fmt.Errorf("fetching indicators: %w", err)
	}
	alerts, err := s.src.AlertsSince(now.Add(-alertWindow))
	if err != nil {
		return FleetSnapshot{}, fmt.Errorf("fetching alerts: %w", err)
	}
	due, err := s.src.DueIndicators(now)
	if err != nil {
		return FleetSnapshot{}, fmt.Errorf("fetching due indicators: %w", err)
	}
	stale, err := s.src.StaleIndicators(now, alertWindow)
	if err != nil {
		return FleetSnapshot{}, fmt.Errorf("fetching stale indicators: %w", err)
	}

	return FleetSnapshot{Indicators: inds, Alerts: alerts, Due: due, Stale: stale}, nil
}

// appendLogSignals scans recent log entries for repeated collector
// failures and folds them into the report as a recommendation.
func (s *Service) appendLogSignals(report *HealthReport) {
	if s.logger == nil {
		return
	}

	failures := 0
	for _, entry := range s.logger.GetLast(100) {
		if entry.Level == logs.ERROR && strings.Contains(entry.Message, "execution failed") {
			failures++
		}
	}
	if failures >= 3 {
		report.Issues = append(report.Issues,
			"Repeated indicator execution failures detected in logs",
		)
		report.Recommendations = append(report.Recommendations,
			"Investigate collector connectivity and target availability",
		)
	}
}

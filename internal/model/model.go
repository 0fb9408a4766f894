package model

import (
	"time"

	"github.com/google/uuid"
)

// Indicator is a scheduled metric with an owner, a run frequency and a
// deviation threshold. LastRun is the zero time when the indicator has
// never been executed.
type Indicator struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Owner            string    `json:"owner"`
	Active           bool      `json:"active"`
	FrequencyMinutes int       `json:"frequency_minutes"`
	CooldownMinutes  int       `json:"cooldown_minutes"`
	ThresholdPct     float64   `json:"threshold_pct"`
	Target           string    `json:"target"`
	LastRun          time.Time `json:"last_run"`
	CreatedAt        time.Time `json:"created_at"`
}

// NextDue returns the next scheduled run time. A never-run indicator is
// due immediately (zero time + frequency is still far in the past).
func (i Indicator) NextDue() time.Time {
	return i.LastRun.Add(time.Duration(i.FrequencyMinutes) * time.Minute)
}

// IsDue reports whether the indicator's next scheduled run has passed.
func (i Indicator) IsDue(now time.Time) bool {
	return now.After(i.NextDue())
}

// IsStale reports whether the indicator is overdue by more than the
// given duration.
func (i Indicator) IsStale(now time.Time, overdueBy time.Duration) bool {
	return now.After(i.NextDue().Add(overdueBy))
}

// AlertLog records a threshold breach for an indicator.
//
// Deviation is nil when the triggering execution produced no comparable
// baseline. A deviation with absolute value >= 50 is considered critical.
type AlertLog struct {
	ID          uuid.UUID `json:"id"`
	IndicatorID uuid.UUID `json:"indicator_id"`
	TriggeredAt time.Time `json:"triggered_at"`
	Deviation   *float64  `json:"deviation_pct,omitempty"`
	Resolved    bool      `json:"resolved"`
	Message     string    `json:"message"`
}

// ExecutionRecord is one row of execution history for an indicator.
type ExecutionRecord struct {
	IndicatorID uuid.UUID `json:"indicator_id"`
	ExecutedAt  time.Time `json:"executed_at"`
	Success     bool      `json:"success"`
	Deviation   *float64  `json:"deviation_pct,omitempty"`
	DurationMs  *int64    `json:"duration_ms,omitempty"`
	Value       float64   `json:"value"`
}

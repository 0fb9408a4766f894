package analytics

import (
	"math"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// CriticalDeviationPct is the absolute deviation at or above which an
// alert counts as critical.
const CriticalDeviationPct = 50.0

// Score computes a 0-100 performance score for one indicator by point
// deduction over the analysis window:
//
//   - 5 points per alert belonging to the indicator
//   - an extra 10 points per critical alert (|deviation| >= 50)
//   - 2 points per failed execution
//   - 0.5 x the mean absolute deviation over history rows that carry one
//
// The result is clamped at 0. Only deductions occur, so it can never
// exceed the 100 starting point.
func Score(ind model.Indicator, alerts []model.AlertLog, history []model.ExecutionRecord) float64 {
	score := 100.0

	for _, a := range alerts {
		if a.IndicatorID != ind.ID {
			continue
		}
		score -= 5
		if IsCritical(a) {
			score -= 10
		}
	}

	var devSum float64
	var devCount int
	for _, h := range history {
		if h.IndicatorID != ind.ID {
			continue
		}
		if !h.Success {
			score -= 2
		}
		if h.Deviation != nil {
			devSum += math.Abs(*h.Deviation)
			devCount++
		}
	}
	if devCount > 0 {
		score -= 0.5 * (devSum / float64(devCount))
	}

	if score < 0 {
		return 0
	}
	return score
}

// IsCritical reports whether an alert carries a critical deviation.
func IsCritical(a model.AlertLog) bool {
	return a.Deviation != nil && math.Abs(*a.Deviation) >= CriticalDeviationPct
}

// IndicatorScores computes the per-indicator score for every indicator.
func IndicatorScores(inds []model.Indicator, alerts []model.AlertLog, history []model.ExecutionRecord) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(inds))
	for _, ind := range inds {
		out[ind.ID] = Score(ind, alerts, history)
	}
	return out
}

// OwnerScore averages the scores of one owner's indicators. An owner
// with no indicators scores 0 rather than dividing by zero; the mean of
// an empty set is undefined and must never surface as NaN.
func OwnerScore(owner string, inds []model.Indicator, alerts []model.AlertLog, history []model.ExecutionRecord) float64 {
	var sum float64
	var count int
	for _, ind := range inds {
		if ind.Owner != owner {
			continue
		}
		sum += Score(ind, alerts, history)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// OwnerScores averages indicator scores for every owner present in the
// indicator list.
func OwnerScores(inds []model.Indicator, alerts []model.AlertLog, history []model.ExecutionRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, ind := range inds {
		if _, done := out[ind.Owner]; done {
			continue
		}
		out[ind.Owner] = OwnerScore(ind.Owner, inds, alerts, history)
	}
	return out
}

package analytics

import (
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"
)

// TimingBucket classifies an indicator purely by how overdue it is
// relative to its configured frequency, independent of alert state:
//
//	on time                              -> Healthy
//	overdue by less than one interval    -> Warning
//	overdue by one full interval or more -> Critical
//
// An inactive indicator is always Inactive.
func TimingBucket(ind model.Indicator, now time.Time) HealthBucket {
	if !ind.Active {
		return BucketInactive
	}

	nextDue := ind.NextDue()
	interval := time.Duration(ind.FrequencyMinutes) * time.Minute
	switch {
	case now.After(nextDue.Add(interval)):
		return BucketCritical
	case now.After(nextDue):
		return BucketWarning
	default:
		return BucketHealthy
	}
}

// InError reports whether the indicator has any unresolved alert in the
// given alert window, regardless of run timing.
func InError(ind model.Indicator, alerts []model.AlertLog) bool {
	for _, a := range alerts {
		if a.IndicatorID == ind.ID && !a.Resolved {
			return true
		}
	}
	return false
}

// Distribute counts indicators per health bucket.
//
// The Healthy count uses the alert-based predicate (active and not in
// error) while Warning and Critical use the timing predicate, so one
// indicator can contribute to Healthy and Critical at the same time.
// The two signals are intentionally not reconciled.
func Distribute(inds []model.Indicator, alerts []model.AlertLog, now time.Time) Distribution {
	var d Distribution
	for _, ind := range inds {
		if !ind.Active {
			d.Inactive++
			continue
		}
		if !InError(ind, alerts) {
			d.Healthy++
		}
		switch TimingBucket(ind, now) {
		case BucketWarning:
			d.Warning++
		case BucketCritical:
			d.Critical++
		}
	}
	return d
}

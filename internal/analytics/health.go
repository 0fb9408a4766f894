package analytics

import (
	"fmt"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// FleetSnapshot is the materialized input for a system health
// evaluation: every indicator, the alerts of the last 24 hours, and the
// due/stale indicator sets.
type FleetSnapshot struct {
	Indicators []model.Indicator
	Alerts     []model.AlertLog
	Due        []model.Indicator
	Stale      []model.Indicator
}

// noisyAlertLimit is the per-indicator 24h alert count above which the
// indicator's threshold is flagged for review.
const noisyAlertLimit = 10

// unresolvedBacklogLimit is the unresolved-alert count above which the
// resolution workflow is flagged.
const unresolvedBacklogLimit = 5

// recommendationRules are evaluated in order against the snapshot.
var recommendationRules = []Rule{
	InactiveIndicatorsRule,
	NoisyIndicatorsRule,
	UnresolvedBacklogRule,
}

// SystemHealth reduces a fleet snapshot to a single status, an issues
// list and a recommendations list.
//
// The health score is the share of active indicators without an
// unresolved alert, 0 when no indicator is active. Status precedence:
// any stale indicator or a score below 70 forces Critical; otherwise any
// due indicator or a score below 90 yields Warning; otherwise Healthy.
func SystemHealth(s FleetSnapshot) HealthReport {
	active := 0
	inError := 0
	for _, ind := range s.Indicators {
		if !ind.Active {
			continue
		}
		active++
		if InError(ind, s.Alerts) {
			inError++
		}
	}

	score := 0.0
	if active > 0 {
		score = float64(active-inError) / float64(active) * 100
	}

	status := StatusHealthy
	switch {
	case len(s.Stale) > 0 || score < 70:
		status = StatusCritical
	case len(s.Due) > 0 || score < 90:
		status = StatusWarning
	}

	unresolved := 0
	critical := 0
	for _, a := range s.Alerts {
		if !a.Resolved {
			unresolved++
		}
		if IsCritical(a) {
			critical++
		}
	}

	issues := []string{}
	if n := len(s.Stale); n > 0 {
		issues = append(issues, fmt.Sprintf("%d indicators are stale (overdue by more than 24 hours)", n))
	}
	if n := len(s.Due); n > 0 {
		issues = append(issues, fmt.Sprintf("%d indicators are due for execution", n))
	}
	if unresolved > 0 {
		issues = append(issues, fmt.Sprintf("%d unresolved alerts in the last 24 hours", unresolved))
	}
	if critical > 0 {
		issues = append(issues, fmt.Sprintf("%d critical alerts in the last 24 hours", critical))
	}

	recommendations := []string{}
	for _, rule := range recommendationRules {
		result := rule(s)
		if result.Triggered {
			recommendations = append(recommendations, result.Recommendation)
		}
	}

	summary := "All indicators are healthy"
	if status != StatusHealthy {
		summary = "Indicator fleet needs attention"
	}

	return HealthReport{
		OverallHealthScore: score,
		Status:             status,
		Summary:            summary,
		Issues:             issues,
		Recommendations:    recommendations,
	}
}

/* ---------- RECOMMENDATION RULES ---------- */

// Inactive indicators accumulate silently and should be reviewed.
func InactiveIndicatorsRule(s FleetSnapshot) RuleResult {
	inactive := 0
	for _, ind := range s.Indicators {
		if !ind.Active {
			inactive++
		}
	}
	if inactive > 0 {
		return RuleResult{
			Triggered:      true,
			Recommendation: fmt.Sprintf("Review %d inactive indicators and re-enable or archive them", inactive),
		}
	}
	return RuleResult{}
}

// An indicator firing more than 10 alerts a day usually has a threshold
// set too tight.
func NoisyIndicatorsRule(s FleetSnapshot) RuleResult {
	perIndicator := make(map[uuid.UUID]int)
	for _, a := range s.Alerts {
		perIndicator[a.IndicatorID]++
	}

	noisy := 0
	for _, count := range perIndicator {
		if count > noisyAlertLimit {
			noisy++
		}
	}
	if noisy > 0 {
		return RuleResult{
			Triggered:      true,
			Recommendation: fmt.Sprintf("%d indicators fired more than %d alerts in 24 hours; review their thresholds", noisy, noisyAlertLimit),
		}
	}
	return RuleResult{}
}

// A growing unresolved backlog points at the resolution workflow, not at
// the indicators themselves.
func UnresolvedBacklogRule(s FleetSnapshot) RuleResult {
	unresolved := 0
	for _, a := range s.Alerts {
		if !a.Resolved {
			unresolved++
		}
	}
	if unresolved > unresolvedBacklogLimit {
		return RuleResult{
			Triggered:      true,
			Recommendation: fmt.Sprintf("%d alerts are unresolved; improve the alert resolution workflow", unresolved),
		}
	}
	return RuleResult{}
}

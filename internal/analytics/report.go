package analytics

import "time"

// TrendDirection classifies how an indicator's deviation is moving.
type TrendDirection string

const (
	TrendImproving     TrendDirection = "Improving"
	TrendDeteriorating TrendDirection = "Deteriorating"
	TrendStable        TrendDirection = "Stable"
)

// HealthBucket classifies a single indicator.
type HealthBucket string

const (
	BucketHealthy  HealthBucket = "Healthy"
	BucketWarning  HealthBucket = "Warning"
	BucketCritical HealthBucket = "Critical"
	BucketInactive HealthBucket = "Inactive"
)

// SystemStatus is the overall fleet classification.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "Healthy"
	StatusWarning  SystemStatus = "Warning"
	StatusCritical SystemStatus = "Critical"
)

// HealthReport is the aggregated fleet health summary.
type HealthReport struct {
	OverallHealthScore float64      `json:"overall_health_score"`
	Status             SystemStatus `json:"system_status"`
	Summary            string       `json:"summary"`
	Issues             []string     `json:"issues"`
	Recommendations    []string     `json:"recommendations"`
}

// Distribution holds per-bucket indicator counts.
//
// Healthy is an alert-based measure and Warning/Critical are timing-based
// measures; the predicates are independent, so the four counts do not
// necessarily sum to the indicator total.
type Distribution struct {
	Healthy  int `json:"healthy"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Inactive int `json:"inactive"`
}

// SeriesPoint is one day-bucketed count for charting.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// RuleResult is the outcome of a single recommendation rule.
type RuleResult struct {
	Triggered      bool
	Recommendation string
}

// Rule inspects a fleet snapshot and may produce a recommendation.
type Rule func(s FleetSnapshot) RuleResult

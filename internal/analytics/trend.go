package analytics

import (
	"math"

	"github.com/Uri-do/monitoringgrid/internal/model"
)

// recentWindow is the number of newest history points compared against
// the remainder when classifying a trend.
const recentWindow = 10

// trendDeadband is the mean-deviation difference below which a trend is
// considered stable.
const trendDeadband = 5.0

// ClassifyTrend labels the deviation trend of execution history ordered
// ascending by timestamp.
//
// The newest 10 points form the "recent" group; everything before them
// forms the "older" group. With 10 or fewer points the older group
// shrinks to the single earliest point, which makes the result sensitive
// to one outlier. That window behavior is deliberate and must not be
// widened.
func ClassifyTrend(history []model.ExecutionRecord) TrendDirection {
	n := len(history)
	if n < 2 {
		return TrendStable
	}

	recentStart := n - recentWindow
	if recentStart < 0 {
		recentStart = 0
	}
	olderEnd := n - recentWindow
	if olderEnd < 1 {
		olderEnd = 1
	}

	diff := meanAbsDeviation(history[recentStart:]) - meanAbsDeviation(history[:olderEnd])
	switch {
	case diff > trendDeadband:
		return TrendDeteriorating
	case diff < -trendDeadband:
		return TrendImproving
	default:
		return TrendStable
	}
}

// meanAbsDeviation averages |deviation| over rows that carry a deviation
// value, returning 0 when none do.
func meanAbsDeviation(rows []model.ExecutionRecord) float64 {
	var sum float64
	var count int
	for _, r := range rows {
		if r.Deviation == nil {
			continue
		}
		sum += math.Abs(*r.Deviation)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

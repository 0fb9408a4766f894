package analytics

import (
	"testing"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func dev(v float64) *float64 {
	return &v
}

func testIndicator(owner string) model.Indicator {
	return model.Indicator{
		ID:               uuid.New(),
		Name:             "orders-per-minute",
		Owner:            owner,
		Active:           true,
		FrequencyMinutes: 5,
	}
}

func alertFor(ind model.Indicator, deviation *float64) model.AlertLog {
	return model.AlertLog{
		ID:          uuid.New(),
		IndicatorID: ind.ID,
		TriggeredAt: time.Now(),
		Deviation:   deviation,
	}
}

func execFor(ind model.Indicator, success bool, deviation *float64) model.ExecutionRecord {
	return model.ExecutionRecord{
		IndicatorID: ind.ID,
		ExecutedAt:  time.Now(),
		Success:     success,
		Deviation:   deviation,
	}
}

func TestScore_CleanIndicator(t *testing.T) {
	ind := testIndicator("ops")
	assert.Equal(t, 100.0, Score(ind, nil, nil))
}

func TestScore_DeductionBreakdown(t *testing.T) {
	// 3 alerts (1 critical at 60%), 10 executions (2 failed), every row
	// carries an 8% deviation:
	// 100 - 3x5 - 1x10 - 2x2 - 0.5x8 = 67
	ind := testIndicator("ops")

	alerts := []model.AlertLog{
		alertFor(ind, dev(60)),
		alertFor(ind, dev(10)),
		alertFor(ind, nil),
	}

	var history []model.ExecutionRecord
	for i := 0; i < 10; i++ {
		history = append(history, execFor(ind, i >= 2, dev(8)))
	}

	assert.InDelta(t, 67.0, Score(ind, alerts, history), 1e-9)
}

func TestScore_IgnoresOtherIndicators(t *testing.T) {
	ind := testIndicator("ops")
	other := testIndicator("ops")

	alerts := []model.AlertLog{alertFor(other, dev(60))}
	history := []model.ExecutionRecord{execFor(other, false, dev(90))}

	assert.Equal(t, 100.0, Score(ind, alerts, history))
}

func TestScore_NeverNegative(t *testing.T) {
	ind := testIndicator("ops")

	var alerts []model.AlertLog
	for i := 0; i < 50; i++ {
		alerts = append(alerts, alertFor(ind, dev(99)))
	}

	assert.Equal(t, 0.0, Score(ind, alerts, nil))
}

func TestScore_MonotonicallyNonIncreasing(t *testing.T) {
	ind := testIndicator("ops")

	alerts := []model.AlertLog{alertFor(ind, dev(10))}
	history := []model.ExecutionRecord{execFor(ind, true, dev(5))}
	base := Score(ind, alerts, history)

	t.Run("AddingAlert", func(t *testing.T) {
		more := append([]model.AlertLog{alertFor(ind, nil)}, alerts...)
		assert.LessOrEqual(t, Score(ind, more, history), base)
	})

	t.Run("AddingCriticalAlert", func(t *testing.T) {
		more := append([]model.AlertLog{alertFor(ind, dev(75))}, alerts...)
		assert.LessOrEqual(t, Score(ind, more, history), base)
	})

	t.Run("AddingFailedExecution", func(t *testing.T) {
		more := append([]model.ExecutionRecord{execFor(ind, false, nil)}, history...)
		assert.LessOrEqual(t, Score(ind, alerts, more), base)
	})
}

func TestScore_HistoryWithoutDeviationsSkipsAverage(t *testing.T) {
	ind := testIndicator("ops")
	history := []model.ExecutionRecord{
		execFor(ind, true, nil),
		execFor(ind, true, nil),
	}

	assert.Equal(t, 100.0, Score(ind, nil, history))
}

func TestOwnerScore_NoIndicators(t *testing.T) {
	inds := []model.Indicator{testIndicator("ops")}

	assert.Equal(t, 0.0, OwnerScore("nobody", inds, nil, nil))
}

func TestOwnerScores_AveragesPerOwner(t *testing.T) {
	a := testIndicator("ops")
	b := testIndicator("ops")
	c := testIndicator("data")
	inds := []model.Indicator{a, b, c}

	// one alert against a: 95 for a, 100 for b -> ops averages 97.5
	alerts := []model.AlertLog{alertFor(a, nil)}

	scores := OwnerScores(inds, alerts, nil)
	assert.InDelta(t, 97.5, scores["ops"], 1e-9)
	assert.Equal(t, 100.0, scores["data"])
}

func TestIndicatorScores_CoversEveryIndicator(t *testing.T) {
	a := testIndicator("ops")
	b := testIndicator("data")

	scores := IndicatorScores([]model.Indicator{a, b}, nil, nil)
	assert.Len(t, scores, 2)
	assert.Equal(t, 100.0, scores[a.ID])
	assert.Equal(t, 100.0, scores[b.ID])
}

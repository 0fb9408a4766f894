package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/logs"
	"github.com/Uri-do/monitoringgrid/internal/metrics"
)

// Storage is the store surface the pruner needs.
type Storage interface {
	PruneResolvedAlerts(before time.Time) (int64, error)
	PruneHistory(before time.Time) (int64, error)
}

// Pruner periodically removes resolved alerts and execution history
// older than the retention window. Unresolved alerts are never pruned.
type Pruner struct {
	store     Storage
	interval  time.Duration
	retention time.Duration
	logger    *logs.Logger
	metrics   *metrics.Metrics
}

// NewPruner creates a retention pruner.
func NewPruner(store Storage, interval, retention time.Duration, logger *logs.Logger, m *metrics.Metrics) *Pruner {
	return &Pruner{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
		metrics:   m,
	}
}

// Start runs the pruning loop until the context is cancelled. It blocks
// and should typically run in its own goroutine.
func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runOnce(time.Now())
		case <-ctx.Done():
			p.logger.Debug("retention", "pruner stopped")
			return
		}
	}
}

func (p *Pruner) runOnce(now time.Time) {
	cutoff := now.Add(-p.retention)

	alerts, err := p.store.PruneResolvedAlerts(cutoff)
	if err != nil {
		p.logger.Error("retention", "pruning alerts failed: "+err.Error())
	} else if alerts > 0 {
		p.metrics.PrunedRowsTotal.WithLabelValues("alerts").Add(float64(alerts))
	}

	history, err := p.store.PruneHistory(cutoff)
	if err != nil {
		p.logger.Error("retention", "pruning history failed: "+err.Error())
	} else if history > 0 {
		p.metrics.PrunedRowsTotal.WithLabelValues("history").Add(float64(history))
	}

	if alerts > 0 || history > 0 {
		p.logger.Info("retention", fmt.Sprintf("pruned %d alerts and %d history rows", alerts, history))
	}
}

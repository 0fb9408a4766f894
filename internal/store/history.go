package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// RecordExecution appends one execution row.
func (s *Store) RecordExecution(rec model.ExecutionRecord) error {
	var deviation, duration any
	if rec.Deviation != nil {
		deviation = *rec.Deviation
	}
	if rec.DurationMs != nil {
		duration = *rec.DurationMs
	}

	_, err := s.db.Exec(`
        INSERT INTO history (indicator_id, executed_at, success, deviation_pct, duration_ms, value)
        VALUES (?, ?, ?, ?, ?, ?)`,
		rec.IndicatorID.String(), formatTime(rec.ExecutedAt), rec.Success,
		deviation, duration, rec.Value,
	)
	if err != nil {
		return fmt.Errorf("recording execution: %w", err)
	}
	return nil
}

// HistorySince returns execution rows at or after since, ordered
// ascending by execution time as the trend classifier expects.
func (s *Store) HistorySince(since time.Time) ([]model.ExecutionRecord, error) {
	rows, err := s.db.Query(`
        SELECT indicator_id, executed_at, success, deviation_pct, duration_ms, value
        FROM history WHERE executed_at >= ? ORDER BY executed_at ASC`,
		formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []model.ExecutionRecord
	for rows.Next() {
		var (
			rec        model.ExecutionRecord
			indID      string
			executedAt string
			deviation  sql.NullFloat64
			duration   sql.NullInt64
		)
		if err := rows.Scan(&indID, &executedAt, &rec.Success, &deviation, &duration, &rec.Value); err != nil {
			return nil, err
		}
		if rec.IndicatorID, err = uuid.Parse(indID); err != nil {
			return nil, fmt.Errorf("parsing history indicator id: %w", err)
		}
		if rec.ExecutedAt, err = parseTime(executedAt); err != nil {
			return nil, err
		}
		if deviation.Valid {
			v := deviation.Float64
			rec.Deviation = &v
		}
		if duration.Valid {
			v := duration.Int64
			rec.DurationMs = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecentValues returns the newest successful execution values for an
// indicator, newest first, up to limit. The scheduler averages them as
// the deviation baseline.
func (s *Store) RecentValues(indicatorID uuid.UUID, limit int) ([]float64, error) {
	rows, err := s.db.Query(`
        SELECT value FROM history
        WHERE indicator_id = ? AND success = 1
        ORDER BY executed_at DESC LIMIT ?`,
		indicatorID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent values: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PruneHistory deletes execution rows older than the cutoff and returns
// the number removed.
func (s *Store) PruneHistory(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM history WHERE executed_at < ?`,
		formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

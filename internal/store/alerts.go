package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// InsertAlert records a new alert. A zero ID is generated.
func (s *Store) InsertAlert(a *model.AlertLog) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	var deviation any
	if a.Deviation != nil {
		deviation = *a.Deviation
	}

	_, err := s.db.Exec(`
        INSERT INTO alerts (id, indicator_id, triggered_at, deviation_pct, resolved, message)
        VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.IndicatorID.String(), formatTime(a.TriggeredAt),
		deviation, a.Resolved, a.Message,
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// AlertsSince returns alerts triggered at or after since, oldest first.
func (s *Store) AlertsSince(since time.Time) ([]model.AlertLog, error) {
	rows, err := s.db.Query(`
        SELECT id, indicator_id, triggered_at, deviation_pct, resolved, message
        FROM alerts WHERE triggered_at >= ? ORDER BY triggered_at ASC`,
		formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var out []model.AlertLog
	for rows.Next() {
		var (
			a           model.AlertLog
			id, indID   string
			triggeredAt string
			deviation   sql.NullFloat64
		)
		if err := rows.Scan(&id, &indID, &triggeredAt, &deviation, &a.Resolved, &a.Message); err != nil {
			return nil, err
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing alert id: %w", err)
		}
		if a.IndicatorID, err = uuid.Parse(indID); err != nil {
			return nil, fmt.Errorf("parsing alert indicator id: %w", err)
		}
		if a.TriggeredAt, err = parseTime(triggeredAt); err != nil {
			return nil, err
		}
		if deviation.Valid {
			v := deviation.Float64
			a.Deviation = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResolveAlert marks an alert resolved.
func (s *Store) ResolveAlert(id uuid.UUID) error {
	res, err := s.db.Exec(`UPDATE alerts SET resolved = 1 WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("resolving alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LastAlertTime returns the newest trigger time for an indicator, used
// by the scheduler's cooldown check.
func (s *Store) LastAlertTime(indicatorID uuid.UUID) (time.Time, bool, error) {
	var triggeredAt sql.NullString
	err := s.db.QueryRow(`
        SELECT MAX(triggered_at) FROM alerts WHERE indicator_id = ?`,
		indicatorID.String()).Scan(&triggeredAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, fmt.Errorf("fetching last alert time: %w", err)
	}
	if !triggeredAt.Valid {
		return time.Time{}, false, nil
	}
	t, err := parseTime(triggeredAt.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// PruneResolvedAlerts deletes resolved alerts triggered before the
// cutoff and returns the number removed.
func (s *Store) PruneResolvedAlerts(before time.Time) (int64, error) {
	res, err := s.db.Exec(`
        DELETE FROM alerts WHERE resolved = 1 AND triggered_at < ?`,
		formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("pruning alerts: %w", err)
	}
	return res.RowsAffected()
}

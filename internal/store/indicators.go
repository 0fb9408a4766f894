package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/model"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// SaveIndicator inserts a new indicator. A zero CreatedAt is filled in.
func (s *Store) SaveIndicator(ind *model.Indicator) error {
	if ind.CreatedAt.IsZero() {
		ind.CreatedAt = time.Now().UTC()
	}

	var lastRun any
	if !ind.LastRun.IsZero() {
		lastRun = formatTime(ind.LastRun)
	}

	_, err := s.db.Exec(`
        INSERT INTO indicators
            (id, name, owner, active, frequency_minutes, cooldown_minutes, threshold_pct, target, last_run, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ind.ID.String(), ind.Name, ind.Owner, ind.Active,
		ind.FrequencyMinutes, ind.CooldownMinutes, ind.ThresholdPct,
		ind.Target, lastRun, formatTime(ind.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving indicator: %w", err)
	}
	return nil
}

// Indicator fetches one indicator by ID.
func (s *Store) Indicator(id uuid.UUID) (model.Indicator, error) {
	row := s.db.QueryRow(`
        SELECT id, name, owner, active, frequency_minutes, cooldown_minutes, threshold_pct, target, last_run, created_at
        FROM indicators WHERE id = ?`, id.String())

	ind, err := scanIndicator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Indicator{}, ErrNotFound
	}
	return ind, err
}

// Indicators returns every indicator, newest first.
func (s *Store) Indicators() ([]model.Indicator, error) {
	rows, err := s.db.Query(`
        SELECT id, name, owner, active, frequency_minutes, cooldown_minutes, threshold_pct, target, last_run, created_at
        FROM indicators ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing indicators: %w", err)
	}
	defer rows.Close()

	var out []model.Indicator
	for rows.Next() {
		ind, err := scanIndicator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ind)
	}
	return out, rows.Err()
}

// DeleteIndicator removes an indicator; alerts and history cascade.
func (s *Store) DeleteIndicator(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM indicators WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting indicator: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastRun records the most recent execution time.
func (s *Store) TouchLastRun(id uuid.UUID, t time.Time) error {
	_, err := s.db.Exec(`UPDATE indicators SET last_run = ? WHERE id = ?`,
		formatTime(t), id.String())
	if err != nil {
		return fmt.Errorf("updating last run: %w", err)
	}
	return nil
}

// DueIndicators returns the active indicators whose next scheduled run
// has passed. The due predicate lives on the model so the scheduler and
// analytics agree on it.
func (s *Store) DueIndicators(now time.Time) ([]model.Indicator, error) {
	return s.filterActive(func(ind model.Indicator) bool {
		return ind.IsDue(now)
	})
}

// StaleIndicators returns the active indicators overdue by more than
// overdueBy.
func (s *Store) StaleIndicators(now time.Time, overdueBy time.Duration) ([]model.Indicator, error) {
	return s.filterActive(func(ind model.Indicator) bool {
		return ind.IsStale(now, overdueBy)
	})
}

func (s *Store) filterActive(keep func(model.Indicator) bool) ([]model.Indicator, error) {
	all, err := s.Indicators()
	if err != nil {
		return nil, err
	}
	out := []model.Indicator{}
	for _, ind := range all {
		if ind.Active && keep(ind) {
			out = append(out, ind)
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIndicator(r rowScanner) (model.Indicator, error) {
	var (
		ind       model.Indicator
		id        string
		lastRun   sql.NullString
		createdAt string
	)
	err := r.Scan(&id, &ind.Name, &ind.Owner, &ind.Active,
		&ind.FrequencyMinutes, &ind.CooldownMinutes, &ind.ThresholdPct,
		&ind.Target, &lastRun, &createdAt)
	if err != nil {
		return model.Indicator{}, err
	}

	if ind.ID, err = uuid.Parse(id); err != nil {
		return model.Indicator{}, fmt.Errorf("parsing indicator id: %w", err)
	}
	if lastRun.Valid {
		if ind.LastRun, err = parseTime(lastRun.String); err != nil {
			return model.Indicator{}, err
		}
	}
	if ind.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Indicator{}, err
	}
	return ind, nil
}

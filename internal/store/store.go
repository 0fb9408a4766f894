// Package store persists indicators, alerts and execution history in a
// local SQLite database and implements the analytics read port.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeFormat is how timestamps are stored in TEXT columns. The
// fixed-width fraction keeps lexicographic and chronological order in
// agreement for SQL comparisons.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps the SQLite connection. All methods are safe for
// concurrent use; database/sql serializes access to the pool.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, enabling WAL mode and
// foreign keys, and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL allows concurrent readers while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS indicators (
            id                TEXT    PRIMARY KEY,
            name              TEXT    NOT NULL,
            owner             TEXT    NOT NULL DEFAULT '',
            active            INTEGER NOT NULL DEFAULT 1,
            frequency_minutes INTEGER NOT NULL,
            cooldown_minutes  INTEGER NOT NULL DEFAULT 0,
            threshold_pct     REAL    NOT NULL DEFAULT 10,
            target            TEXT    NOT NULL DEFAULT '',
            last_run          TEXT,
            created_at        TEXT    NOT NULL
        );
        CREATE TABLE IF NOT EXISTS alerts (
            id            TEXT    PRIMARY KEY,
            indicator_id  TEXT    NOT NULL REFERENCES indicators(id) ON DELETE CASCADE,
            triggered_at  TEXT    NOT NULL,
            deviation_pct REAL,
            resolved      INTEGER NOT NULL DEFAULT 0,
            message       TEXT    NOT NULL DEFAULT ''
        );
        CREATE TABLE IF NOT EXISTS history (
            id            INTEGER PRIMARY KEY AUTOINCREMENT,
            indicator_id  TEXT    NOT NULL REFERENCES indicators(id) ON DELETE CASCADE,
            executed_at   TEXT    NOT NULL,
            success       INTEGER NOT NULL,
            deviation_pct REAL,
            duration_ms   INTEGER,
            value         REAL    NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS idx_alerts_triggered_at ON alerts(triggered_at);
        CREATE INDEX IF NOT EXISTS idx_alerts_indicator ON alerts(indicator_id);
        CREATE INDEX IF NOT EXISTS idx_history_executed_at ON history(executed_at);
        CREATE INDEX IF NOT EXISTS idx_history_indicator ON history(indicator_id);
    `
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}

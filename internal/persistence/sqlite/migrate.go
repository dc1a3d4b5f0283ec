package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; each entry runs at most once per
// database, tracked through the schema_migrations table.
var migrations = []struct {
	version int
	stmt    string
}{
	{
		version: 1,
		stmt: `
CREATE TABLE IF NOT EXISTS rooms (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    location    TEXT NOT NULL DEFAULT '',
    capacity    INTEGER NOT NULL CHECK (capacity > 0),
    description TEXT NOT NULL DEFAULT '',
    active      INTEGER NOT NULL DEFAULT 1,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
)`,
	},
	{
		version: 2,
		stmt: `
CREATE TABLE IF NOT EXISTS reservations (
    id          TEXT PRIMARY KEY,
    room_id     TEXT NOT NULL REFERENCES rooms(id),
    requester   TEXT NOT NULL,
    date        TEXT NOT NULL,
    start_time  TEXT NOT NULL,
    end_time    TEXT NOT NULL,
    attendees   INTEGER NOT NULL CHECK (attendees > 0),
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL CHECK (status IN ('confirmed', 'canceled')),
    created_at  TEXT NOT NULL
)`,
	},
	{
		version: 3,
		stmt: `
CREATE TABLE IF NOT EXISTS maintenance_windows (
    id         TEXT PRIMARY KEY,
    room_id    TEXT NOT NULL REFERENCES rooms(id),
    start_date TEXT NOT NULL,
    end_date   TEXT NOT NULL,
    reason     TEXT NOT NULL,
    created_by TEXT NOT NULL,
    created_at TEXT NOT NULL
)`,
	},
	{
		version: 4,
		stmt: `
CREATE INDEX IF NOT EXISTS idx_reservations_room_date ON reservations(room_id, date)`,
	},
	{
		version: 5,
		stmt: `
CREATE INDEX IF NOT EXISTS idx_reservations_requester ON reservations(requester)`,
	},
	{
		version: 6,
		stmt: `
CREATE INDEX IF NOT EXISTS idx_maintenance_room_dates ON maintenance_windows(room_id, start_date, end_date)`,
	},
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`); err != nil {
			return fmt.Errorf("failed to create schema_migrations: %w", err)
		}

		for _, m := range migrations {
			var applied int
			err := tx.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&applied)
			if err != nil {
				return fmt.Errorf("failed to check migration %d: %w", m.version, err)
			}
			if applied > 0 {
				continue
			}
			if _, err := tx.Exec(m.stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}
			if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
		}
		return nil
	})
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration pairs a monotonically increasing version with the DDL applied for
// that version. Versions already recorded in schema_migrations are skipped.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS services (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				duration_minutes INTEGER NOT NULL DEFAULT 60,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS resources (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				capacity INTEGER,
				location TEXT NOT NULL DEFAULT '',
				color_code TEXT NOT NULL DEFAULT '#3b82f6',
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS resource_availability (
				resource_id TEXT NOT NULL,
				day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				is_available INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (resource_id, day_of_week, start_time, end_time),
				FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
			)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS appointments (
				id TEXT PRIMARY KEY,
				reference_code TEXT NOT NULL UNIQUE,
				user_id TEXT NOT NULL,
				service_id TEXT NOT NULL,
				staff_id TEXT,
				title TEXT NOT NULL,
				description TEXT,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				is_recurring INTEGER NOT NULL DEFAULT 0,
				recurrence_pattern TEXT,
				recurrence_end_date TEXT,
				parent_appointment_id TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (end_time > start_time),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (service_id) REFERENCES services(id) ON DELETE CASCADE,
				FOREIGN KEY (staff_id) REFERENCES users(id) ON DELETE SET NULL,
				FOREIGN KEY (parent_appointment_id) REFERENCES appointments(id) ON DELETE SET NULL
			)`,
			`CREATE TABLE IF NOT EXISTS appointment_resources (
				appointment_id TEXT NOT NULL,
				resource_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'confirmed',
				notes TEXT,
				PRIMARY KEY (appointment_id, resource_id),
				FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE CASCADE,
				FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_appointments_start_time ON appointments(start_time)`,
			`CREATE INDEX IF NOT EXISTS idx_appointments_status ON appointments(status)`,
			`CREATE INDEX IF NOT EXISTS idx_appointments_user_id ON appointments(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_appointments_service_id ON appointments(service_id)`,
			`CREATE INDEX IF NOT EXISTS idx_appointment_resources_resource ON appointment_resources(resource_id)`,
		},
	},
}

// Migrate applies all outstanding schema migrations in version order. Each
// version runs in its own transaction and is recorded in schema_migrations so
// restarts are idempotent.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to ensure migration ledger: %w", err)
	}

	for _, m := range migrations {
		applied, err := cp.migrationApplied(ctx, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
				m.version,
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect migration ledger: %w", err)
	}
	return count > 0, nil
}

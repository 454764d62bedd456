package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: ledger, expenses, accounts",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS ledger_entries (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					account_code TEXT NOT NULL,
					account_name TEXT,
					description TEXT,
					reference TEXT,
					category TEXT,
					debit TEXT NOT NULL,
					credit TEXT NOT NULL,
					balance TEXT NOT NULL,
					synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_ledger_date ON ledger_entries(date)`,
				`CREATE INDEX idx_ledger_account ON ledger_entries(account_code)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					description TEXT,
					category TEXT,
					department TEXT,
					status TEXT NOT NULL,
					submitted_by TEXT,
					receipt TEXT,
					client_ref TEXT UNIQUE,
					amount TEXT NOT NULL,
					synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_date ON expenses(date)`,
				`CREATE INDEX idx_expenses_status ON expenses(status)`,

				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY,
					code TEXT UNIQUE NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					active INTEGER DEFAULT 1,
					created_at DATETIME
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("migration query failed: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Journal entries with lines, proposals",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS journal_entries (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					reference TEXT,
					description TEXT,
					status TEXT NOT NULL,
					created_by TEXT,
					client_ref TEXT,
					synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_journal_date ON journal_entries(date)`,

				`CREATE TABLE IF NOT EXISTS journal_lines (
					entry_id TEXT NOT NULL,
					line_no INTEGER NOT NULL,
					account_code TEXT NOT NULL,
					account_name TEXT,
					debit TEXT NOT NULL,
					credit TEXT NOT NULL,
					PRIMARY KEY (entry_id, line_no),
					FOREIGN KEY (entry_id) REFERENCES journal_entries(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS proposals (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					department TEXT,
					category TEXT,
					status TEXT NOT NULL,
					submitted_by TEXT,
					submitted_at DATETIME,
					amount TEXT NOT NULL,
					synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_proposals_status ON proposals(status)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("migration query failed: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Users and fiscal years",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					email TEXT,
					phone TEXT,
					role TEXT NOT NULL,
					active INTEGER DEFAULT 1,
					last_login DATETIME
				)`,
				`CREATE INDEX idx_users_role ON users(role)`,

				`CREATE TABLE IF NOT EXISTS fiscal_years (
					id INTEGER PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					start_date DATETIME NOT NULL,
					end_date DATETIME NOT NULL,
					active INTEGER DEFAULT 0
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("migration query failed: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}

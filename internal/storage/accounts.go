package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tallyhq/tally/internal/model"
)

// SaveAccounts upserts the chart of accounts.
func (s *SQLiteStorage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accounts (id, code, name, type, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			type = excluded.type,
			active = excluded.active,
			created_at = excluded.created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range accounts {
		a := &accounts[i]
		if !a.Type.IsValid() {
			return fmt.Errorf("account %s has unknown type %q", a.Code, a.Type)
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.Code, a.Name, string(a.Type), a.Active, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to save account %s: %w", a.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetAccounts returns the cached chart of accounts ordered by code.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, type, active, created_at
		FROM accounts
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var accountType string
		var createdAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &accountType, &a.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Type = model.AccountType(accountType)
		if createdAt.Valid {
			a.CreatedAt = createdAt.Time
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// SaveFiscalYears upserts the known fiscal years.
func (s *SQLiteStorage) SaveFiscalYears(ctx context.Context, years []model.FiscalYear) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fiscal_years (id, name, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range years {
		y := &years[i]
		if _, err := stmt.ExecContext(ctx, y.ID, y.Name, y.StartDate, y.EndDate, y.Active); err != nil {
			return fmt.Errorf("failed to save fiscal year %s: %w", y.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetFiscalYears returns all cached fiscal years, newest first.
func (s *SQLiteStorage) GetFiscalYears(ctx context.Context) ([]model.FiscalYear, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, active
		FROM fiscal_years
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var years []model.FiscalYear
	for rows.Next() {
		var y model.FiscalYear
		if err := rows.Scan(&y.ID, &y.Name, &y.StartDate, &y.EndDate, &y.Active); err != nil {
			return nil, fmt.Errorf("failed to scan fiscal year: %w", err)
		}
		years = append(years, y)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal years: %w", err)
	}

	return years, nil
}

// GetActiveFiscalYear returns the active fiscal year, or (nil, nil) when
// none is marked active.
func (s *SQLiteStorage) GetActiveFiscalYear(ctx context.Context) (*model.FiscalYear, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var y model.FiscalYear
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, active
		FROM fiscal_years
		WHERE active = 1
		ORDER BY start_date DESC
		LIMIT 1`).Scan(&y.ID, &y.Name, &y.StartDate, &y.EndDate, &y.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active fiscal year: %w", err)
	}

	return &y, nil
}

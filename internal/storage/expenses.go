package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// SaveExpenses upserts a batch of expenses. Rows are keyed by ID for synced
// records; locally staged records carry only a client_ref and get their
// server ID on the next sync.
func (s *SQLiteStorage) SaveExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expenses (id, date, description, category, department, status, submitted_by, receipt, client_ref, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			description = excluded.description,
			category = excluded.category,
			department = excluded.department,
			status = excluded.status,
			submitted_by = excluded.submitted_by,
			receipt = excluded.receipt,
			client_ref = excluded.client_ref,
			amount = excluded.amount,
			synced_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range expenses {
		e := &expenses[i]
		id := e.ID
		if id == "" {
			id = "local-" + e.ClientRef
		}
		if _, err := stmt.ExecContext(ctx,
			id, e.Date, e.Description, e.Category, e.Department, string(e.Status),
			e.SubmittedBy, e.Receipt, nullIfEmpty(e.ClientRef), e.Amount.String()); err != nil {
			return fmt.Errorf("failed to save expense %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("saved expenses", "count", len(expenses))
	return nil
}

// GetExpenses returns all cached expenses, newest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, category, department, status, submitted_by, receipt, COALESCE(client_ref, ''), amount
		FROM expenses
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// GetExpenseByClientRef looks up an expense by its idempotency key. Returns
// (nil, nil) when no such expense exists.
func (s *SQLiteStorage) GetExpenseByClientRef(ctx context.Context, clientRef string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(clientRef, "clientRef"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, date, description, category, department, status, submitted_by, receipt, COALESCE(client_ref, ''), amount
		FROM expenses
		WHERE client_ref = ?`, clientRef)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (model.Expense, error) {
	var e model.Expense
	var status, amount string
	if err := row.Scan(&e.ID, &e.Date, &e.Description, &e.Category, &e.Department,
		&status, &e.SubmittedBy, &e.Receipt, &e.ClientRef, &amount); err != nil {
		return model.Expense{}, err
	}

	e.Status = model.ExpenseStatus(status)
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Expense{}, fmt.Errorf("corrupt amount for expense %s: %w", e.ID, err)
	}
	e.Amount = parsed
	return e, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// SaveLedgerEntries upserts a batch of ledger entries in one transaction.
func (s *SQLiteStorage) SaveLedgerEntries(ctx context.Context, entries []model.LedgerEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range entries {
		if err := validateLedgerEntry(&entries[i]); err != nil {
			return fmt.Errorf("ledger entry at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (id, date, account_code, account_name, description, reference, category, debit, credit, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			account_code = excluded.account_code,
			account_name = excluded.account_name,
			description = excluded.description,
			reference = excluded.reference,
			category = excluded.category,
			debit = excluded.debit,
			credit = excluded.credit,
			balance = excluded.balance,
			synced_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		e := &entries[i]
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Date, e.AccountCode, e.AccountName, e.Description, e.Reference, e.Category,
			e.Debit.String(), e.Credit.String(), e.Balance.String()); err != nil {
			return fmt.Errorf("failed to save ledger entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("saved ledger entries", "count", len(entries))
	return nil
}

// GetLedgerEntries returns all cached ledger entries, newest first.
func (s *SQLiteStorage) GetLedgerEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, account_code, account_name, description, reference, category, debit, credit, balance
		FROM ledger_entries
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var debit, credit, balance string
		if err := rows.Scan(&e.ID, &e.Date, &e.AccountCode, &e.AccountName, &e.Description,
			&e.Reference, &e.Category, &debit, &credit, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("corrupt debit amount for %s: %w", e.ID, err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("corrupt credit amount for %s: %w", e.ID, err)
		}
		if e.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("corrupt balance for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

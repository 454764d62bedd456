package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// SaveJournalEntries upserts journal entries and their lines. Lines are
// replaced wholesale per entry since the backend is the source of truth.
func (s *SQLiteStorage) SaveJournalEntries(ctx context.Context, entries []model.JournalEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range entries {
		if err := validateJournalEntry(&entries[i]); err != nil {
			return fmt.Errorf("journal entry at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_entries (id, date, reference, description, status, created_by, client_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			reference = excluded.reference,
			description = excluded.description,
			status = excluded.status,
			created_by = excluded.created_by,
			client_ref = excluded.client_ref,
			synced_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry statement: %w", err)
	}
	defer func() { _ = entryStmt.Close() }()

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal_lines (entry_id, line_no, account_code, account_name, debit, credit)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare line statement: %w", err)
	}
	defer func() { _ = lineStmt.Close() }()

	for i := range entries {
		e := &entries[i]
		if _, err := entryStmt.ExecContext(ctx,
			e.ID, e.Date, e.Reference, e.Description, string(e.Status), e.CreatedBy, e.ClientRef); err != nil {
			return fmt.Errorf("failed to save journal entry %s: %w", e.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM journal_lines WHERE entry_id = ?`, e.ID); err != nil {
			return fmt.Errorf("failed to clear lines for %s: %w", e.ID, err)
		}

		for lineNo, line := range e.Lines {
			if _, err := lineStmt.ExecContext(ctx,
				e.ID, lineNo, line.AccountCode, line.AccountName,
				line.Debit.String(), line.Credit.String()); err != nil {
				return fmt.Errorf("failed to save line %d of %s: %w", lineNo, e.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("saved journal entries", "count", len(entries))
	return nil
}

// GetJournalEntries returns all cached journal entries with their lines,
// newest first.
func (s *SQLiteStorage) GetJournalEntries(ctx context.Context) ([]model.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, reference, description, status, created_by, COALESCE(client_ref, '')
		FROM journal_entries
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.JournalEntry
	index := make(map[string]int)
	for rows.Next() {
		var e model.JournalEntry
		var status string
		if err := rows.Scan(&e.ID, &e.Date, &e.Reference, &e.Description, &status, &e.CreatedBy, &e.ClientRef); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Status = model.JournalStatus(status)
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, account_code, account_name, debit, credit
		FROM journal_lines
		ORDER BY entry_id, line_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer func() { _ = lineRows.Close() }()

	for lineRows.Next() {
		var entryID, debit, credit string
		var line model.JournalLine
		if err := lineRows.Scan(&entryID, &line.AccountCode, &line.AccountName, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		if line.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("corrupt debit for %s: %w", entryID, err)
		}
		if line.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("corrupt credit for %s: %w", entryID, err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].Lines = append(entries[i].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}

	return entries, nil
}

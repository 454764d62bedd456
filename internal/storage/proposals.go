package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// SaveProposals upserts a batch of budget proposals.
func (s *SQLiteStorage) SaveProposals(ctx context.Context, proposals []model.Proposal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO proposals (id, title, department, category, status, submitted_by, submitted_at, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			department = excluded.department,
			category = excluded.category,
			status = excluded.status,
			submitted_by = excluded.submitted_by,
			submitted_at = excluded.submitted_at,
			amount = excluded.amount,
			synced_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range proposals {
		p := &proposals[i]
		if p.ID == "" {
			return fmt.Errorf("proposal at index %d: %w: missing ID", i, ErrNilParameter)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Department, p.Category, string(p.Status),
			p.SubmittedBy, p.SubmittedAt, p.Amount.String()); err != nil {
			return fmt.Errorf("failed to save proposal %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("saved proposals", "count", len(proposals))
	return nil
}

// GetProposals returns all cached proposals, newest first.
func (s *SQLiteStorage) GetProposals(ctx context.Context) ([]model.Proposal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, department, category, status, submitted_by, submitted_at, amount
		FROM proposals
		ORDER BY submitted_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var proposals []model.Proposal
	for rows.Next() {
		var p model.Proposal
		var status, amount string
		if err := rows.Scan(&p.ID, &p.Title, &p.Department, &p.Category, &status,
			&p.SubmittedBy, &p.SubmittedAt, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		p.Status = model.ProposalStatus(status)
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt amount for proposal %s: %w", p.ID, err)
		}
		proposals = append(proposals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}

	return proposals, nil
}

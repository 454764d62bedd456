package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidLedgerEntry = errors.New("invalid ledger entry")
	ErrInvalidExpense     = errors.New("invalid expense")
	ErrInvalidJournal     = errors.New("invalid journal entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateLedgerEntry(entry *model.LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidLedgerEntry)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidLedgerEntry)
	}
	if entry.AccountCode == "" {
		return fmt.Errorf("%w: missing account code", ErrInvalidLedgerEntry)
	}
	return nil
}

func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.ID == "" && expense.ClientRef == "" {
		return fmt.Errorf("%w: missing ID and client ref", ErrInvalidExpense)
	}
	if expense.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	return nil
}

func validateJournalEntry(entry *model.JournalEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidJournal)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidJournal)
	}
	return nil
}

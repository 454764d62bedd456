// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/tallyhq/tally/internal/model"
)

// Storage defines the contract for the local record cache. List methods
// return full record sets; searching, filtering, and pagination are applied
// client-side by the listquery engine.
type Storage interface {
	// Ledger operations
	SaveLedgerEntries(ctx context.Context, entries []model.LedgerEntry) error
	GetLedgerEntries(ctx context.Context) ([]model.LedgerEntry, error)

	// Expense operations
	SaveExpenses(ctx context.Context, expenses []model.Expense) error
	GetExpenses(ctx context.Context) ([]model.Expense, error)
	GetExpenseByClientRef(ctx context.Context, clientRef string) (*model.Expense, error)

	// Journal operations
	SaveJournalEntries(ctx context.Context, entries []model.JournalEntry) error
	GetJournalEntries(ctx context.Context) ([]model.JournalEntry, error)

	// Proposal operations
	SaveProposals(ctx context.Context, proposals []model.Proposal) error
	GetProposals(ctx context.Context) ([]model.Proposal, error)

	// Chart of accounts
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	GetAccounts(ctx context.Context) ([]model.Account, error)

	// User operations
	SaveUsers(ctx context.Context, users []model.User) error
	GetUsers(ctx context.Context) ([]model.User, error)

	// Fiscal years
	SaveFiscalYears(ctx context.Context, years []model.FiscalYear) error
	GetFiscalYears(ctx context.Context) ([]model.FiscalYear, error)
	GetActiveFiscalYear(ctx context.Context) (*model.FiscalYear, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

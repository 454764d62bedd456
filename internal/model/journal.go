package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus tracks whether an entry has been posted to the ledger.
type JournalStatus string

// Journal entry statuses.
const (
	JournalDraft  JournalStatus = "draft"
	JournalPosted JournalStatus = "posted"
)

// JournalLine is one debit/credit leg of a journal entry.
type JournalLine struct {
	AccountCode string
	AccountName string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalEntry is a double-entry journal record.
type JournalEntry struct {
	Date        time.Time
	ID          string
	Reference   string
	Description string
	CreatedBy   string
	// ClientRef is a caller-generated idempotency key for entries created
	// through this client.
	ClientRef string
	Status    JournalStatus
	Lines     []JournalLine
}

// TotalDebit sums the debit legs of the entry.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// TotalCredit sums the credit legs of the entry.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// Balanced reports whether total debits equal total credits. An entry with
// no lines is not balanced.
func (e *JournalEntry) Balanced() bool {
	if len(e.Lines) == 0 {
		return false
	}
	return e.TotalDebit().Equal(e.TotalCredit())
}

package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one posted row in the general ledger.
type LedgerEntry struct {
	Date        time.Time
	ID          string
	AccountCode string
	AccountName string
	Description string
	Reference   string
	Category    string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
}

// Amount returns the signed movement of the entry: debits positive,
// credits negative.
func (e *LedgerEntry) Amount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// GenerateHash creates a stable hash for duplicate detection when the
// backend does not supply an ID.
func (e *LedgerEntry) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		e.Date.Format("2006-01-02"),
		e.AccountCode,
		e.Debit.StringFixed(2),
		e.Credit.StringFixed(2),
		e.Reference)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

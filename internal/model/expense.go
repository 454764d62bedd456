package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus tracks an expense through review and reimbursement.
type ExpenseStatus string

// Expense statuses.
const (
	ExpensePending    ExpenseStatus = "pending"
	ExpenseApproved   ExpenseStatus = "approved"
	ExpenseReimbursed ExpenseStatus = "reimbursed"
	ExpenseRejected   ExpenseStatus = "rejected"
)

// Expense is a tracked expenditure, either fetched from the backend or
// staged locally for submission.
type Expense struct {
	Date        time.Time
	ID          string
	Description string
	Category    string
	Department  string
	SubmittedBy string
	Receipt     string
	// ClientRef is a caller-generated idempotency key so a resubmitted
	// expense is not duplicated server-side.
	ClientRef string
	Status    ExpenseStatus
	Amount    decimal.Decimal
}

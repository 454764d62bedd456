package model

import "time"

// AccountType classifies an account in the chart of accounts.
type AccountType string

// Account types.
const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid reports whether the account type is one of the known values.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account is one entry in the chart of accounts.
type Account struct {
	CreatedAt time.Time
	Code      string
	Name      string
	Type      AccountType
	ID        int
	Active    bool
}

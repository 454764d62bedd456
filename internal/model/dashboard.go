package model

import "github.com/shopspring/decimal"

// BudgetSummary is the top-line dashboard aggregate for the active fiscal
// year.
type BudgetSummary struct {
	FiscalYear     string
	TotalBudget    decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalRemaining decimal.Decimal
	UtilizationPct float64
}

// MonthlyFlow is one month of aggregate inflow and outflow.
type MonthlyFlow struct {
	Month   string
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
}

// Net returns inflow minus outflow for the month.
func (m *MonthlyFlow) Net() decimal.Decimal {
	return m.Inflow.Sub(m.Outflow)
}

// ForecastPoint is one month of projected versus actual spend.
type ForecastPoint struct {
	Month     string
	Projected decimal.Decimal
	Actual    decimal.Decimal
}

// CategoryBudgetStatus is the budget-versus-actual position of one
// spending category.
type CategoryBudgetStatus struct {
	Category  string
	Budget    decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

// Variance returns budget minus spent; negative means overspent.
func (c *CategoryBudgetStatus) Variance() decimal.Decimal {
	return c.Budget.Sub(c.Spent)
}

// OverBudget reports whether spending has exceeded the category budget.
func (c *CategoryBudgetStatus) OverBudget() bool {
	return c.Spent.GreaterThan(c.Budget)
}

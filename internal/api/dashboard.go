package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// BudgetSummary fetches the top-line budget aggregates for the active
// fiscal year.
func (c *Client) BudgetSummary(ctx context.Context) (*model.BudgetSummary, error) {
	var body struct {
		FiscalYear     string          `json:"fiscal_year"`
		TotalBudget    decimal.Decimal `json:"total_budget"`
		TotalSpent     decimal.Decimal `json:"total_spent"`
		TotalRemaining decimal.Decimal `json:"total_remaining"`
		UtilizationPct float64         `json:"utilization_pct"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/budget-summary/", nil, nil, &body); err != nil {
		return nil, err
	}

	return &model.BudgetSummary{
		FiscalYear:     body.FiscalYear,
		TotalBudget:    body.TotalBudget,
		TotalSpent:     body.TotalSpent,
		TotalRemaining: body.TotalRemaining,
		UtilizationPct: body.UtilizationPct,
	}, nil
}

// MonthlyFlow fetches the inflow/outflow series for a fiscal year.
func (c *Client) MonthlyFlow(ctx context.Context, fiscalYearID int) ([]model.MonthlyFlow, error) {
	params := url.Values{}
	if fiscalYearID > 0 {
		params.Set("fiscal_year_id", strconv.Itoa(fiscalYearID))
	}

	var body []struct {
		Month   string          `json:"month"`
		Inflow  decimal.Decimal `json:"inflow"`
		Outflow decimal.Decimal `json:"outflow"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/overall-monthly-flow/", nil, params, &body); err != nil {
		return nil, err
	}

	flows := make([]model.MonthlyFlow, len(body))
	for i, m := range body {
		flows[i] = model.MonthlyFlow{Month: m.Month, Inflow: m.Inflow, Outflow: m.Outflow}
	}
	return flows, nil
}

// Forecast fetches the projected-versus-actual spend series for a fiscal
// year.
func (c *Client) Forecast(ctx context.Context, fiscalYearID int) ([]model.ForecastPoint, error) {
	params := url.Values{}
	if fiscalYearID > 0 {
		params.Set("fiscal_year_id", strconv.Itoa(fiscalYearID))
	}

	var body []struct {
		Month     string          `json:"month"`
		Projected decimal.Decimal `json:"projected"`
		Actual    decimal.Decimal `json:"actual"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/forecast/", nil, params, &body); err != nil {
		return nil, err
	}

	points := make([]model.ForecastPoint, len(body))
	for i, p := range body {
		points[i] = model.ForecastPoint{Month: p.Month, Projected: p.Projected, Actual: p.Actual}
	}
	return points, nil
}

// CategoryBudgetStatus fetches the budget-versus-actual position of every
// spending category.
func (c *Client) CategoryBudgetStatus(ctx context.Context) ([]model.CategoryBudgetStatus, error) {
	var body []struct {
		Category  string          `json:"category"`
		Budget    decimal.Decimal `json:"budget"`
		Spent     decimal.Decimal `json:"spent"`
		Remaining decimal.Decimal `json:"remaining"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/category-budget-status/", nil, nil, &body); err != nil {
		return nil, err
	}

	statuses := make([]model.CategoryBudgetStatus, len(body))
	for i, s := range body {
		statuses[i] = model.CategoryBudgetStatus{
			Category:  s.Category,
			Budget:    s.Budget,
			Spent:     s.Spent,
			Remaining: s.Remaining,
		}
	}
	return statuses, nil
}

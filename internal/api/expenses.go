package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

type wireExpense struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Department  string          `json:"department,omitempty"`
	Status      string          `json:"status,omitempty"`
	SubmittedBy string          `json:"submitted_by,omitempty"`
	Receipt     string          `json:"receipt,omitempty"`
	ClientRef   string          `json:"client_ref,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

func (w *wireExpense) toModel() (model.Expense, error) {
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		return model.Expense{}, fmt.Errorf("invalid expense date %q: %w", w.Date, err)
	}

	return model.Expense{
		ID:          w.ID,
		Date:        date,
		Description: w.Description,
		Category:    w.Category,
		Department:  w.Department,
		Status:      model.ExpenseStatus(w.Status),
		SubmittedBy: w.SubmittedBy,
		Receipt:     w.Receipt,
		ClientRef:   w.ClientRef,
		Amount:      w.Amount,
	}, nil
}

// ListExpenses fetches one page of tracked expenses.
func (c *Client) ListExpenses(ctx context.Context, params ListParams) (*Page[model.Expense], error) {
	var body struct {
		Next    *string       `json:"next"`
		Results []wireExpense `json:"results"`
		Count   int           `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/expenses/tracking/", nil, params.values(), &body); err != nil {
		return nil, err
	}

	page := &Page[model.Expense]{
		Results: make([]model.Expense, 0, len(body.Results)),
		Count:   body.Count,
		HasNext: body.Next != nil,
	}
	for i := range body.Results {
		expense, err := body.Results[i].toModel()
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, expense)
	}
	return page, nil
}

// SubmitExpense submits a new expense for tracking. A ClientRef is
// generated when the caller did not set one, so a resubmission after a
// network failure does not double-book.
func (c *Client) SubmitExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	if expense.ClientRef == "" {
		expense.ClientRef = uuid.NewString()
	}

	payload := wireExpense{
		Date:        expense.Date.Format("2006-01-02"),
		Description: expense.Description,
		Category:    expense.Category,
		Department:  expense.Department,
		Receipt:     expense.Receipt,
		ClientRef:   expense.ClientRef,
		Amount:      expense.Amount,
	}

	var body wireExpense
	if err := c.do(ctx, http.MethodPost, "/expenses/submit/", payload, nil, &body); err != nil {
		return nil, err
	}

	created, err := body.toModel()
	if err != nil {
		return nil, err
	}
	return &created, nil
}

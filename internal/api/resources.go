package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/model"
)

// listResource fetches one page of a DRF-style paginated listing and
// converts each wire record to its domain type.
func listResource[W, T any](ctx context.Context, c *Client, path string, params ListParams, convert func(*W) (T, error)) (*Page[T], error) {
	var body struct {
		Next    *string `json:"next"`
		Results []W     `json:"results"`
		Count   int     `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, params.values(), &body); err != nil {
		return nil, err
	}

	page := &Page[T]{
		Results: make([]T, 0, len(body.Results)),
		Count:   body.Count,
		HasNext: body.Next != nil,
	}
	for i := range body.Results {
		record, err := convert(&body.Results[i])
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, record)
	}
	return page, nil
}

type wireLedgerEntry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Category    string          `json:"category"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

func (w *wireLedgerEntry) toModel() (model.LedgerEntry, error) {
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("invalid ledger date %q: %w", w.Date, err)
	}
	return model.LedgerEntry{
		ID:          w.ID,
		Date:        date,
		AccountCode: w.AccountCode,
		AccountName: w.AccountName,
		Description: w.Description,
		Reference:   w.Reference,
		Category:    w.Category,
		Debit:       w.Debit,
		Credit:      w.Credit,
		Balance:     w.Balance,
	}, nil
}

// ListLedgerEntries fetches one page of the general ledger.
func (c *Client) ListLedgerEntries(ctx context.Context, params ListParams) (*Page[model.LedgerEntry], error) {
	return listResource(ctx, c, "/ledger/", params, (*wireLedgerEntry).toModel)
}

type wireProposal struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Department  string          `json:"department"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	SubmittedBy string          `json:"submitted_by"`
	SubmittedAt string          `json:"submitted_at"`
	Amount      decimal.Decimal `json:"amount"`
}

func (w *wireProposal) toModel() (model.Proposal, error) {
	submittedAt, err := time.Parse(time.RFC3339, w.SubmittedAt)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("invalid proposal timestamp %q: %w", w.SubmittedAt, err)
	}
	return model.Proposal{
		ID:          w.ID,
		Title:       w.Title,
		Department:  w.Department,
		Category:    w.Category,
		Status:      model.ProposalStatus(w.Status),
		SubmittedBy: w.SubmittedBy,
		SubmittedAt: submittedAt,
		Amount:      w.Amount,
	}, nil
}

// ListProposals fetches one page of budget proposals.
func (c *Client) ListProposals(ctx context.Context, params ListParams) (*Page[model.Proposal], error) {
	return listResource(ctx, c, "/proposals/", params, (*wireProposal).toModel)
}

type wireAccount struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func (w *wireAccount) toModel() (model.Account, error) {
	account := model.Account{
		ID:     w.ID,
		Code:   w.Code,
		Name:   w.Name,
		Type:   model.AccountType(w.Type),
		Active: w.Active,
	}
	if w.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, w.CreatedAt)
		if err != nil {
			return model.Account{}, fmt.Errorf("invalid account timestamp %q: %w", w.CreatedAt, err)
		}
		account.CreatedAt = createdAt
	}
	return account, nil
}

// ListAccounts fetches one page of the chart of accounts.
func (c *Client) ListAccounts(ctx context.Context, params ListParams) (*Page[model.Account], error) {
	return listResource(ctx, c, "/accounts/", params, (*wireAccount).toModel)
}

type wireUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	LastLogin string `json:"last_login"`
}

func (w *wireUser) toModel() (model.User, error) {
	user := model.User{
		ID:     w.ID,
		Name:   w.Name,
		Email:  w.Email,
		Phone:  w.Phone,
		Role:   model.Role(w.Role),
		Active: w.Active,
	}
	// last_login is null for users who have never signed in.
	if w.LastLogin != "" {
		lastLogin, err := time.Parse(time.RFC3339, w.LastLogin)
		if err != nil {
			return model.User{}, fmt.Errorf("invalid last-login timestamp %q: %w", w.LastLogin, err)
		}
		user.LastLogin = lastLogin
	}
	return user, nil
}

// ListUsers fetches one page of user accounts.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (*Page[model.User], error) {
	return listResource(ctx, c, "/users/", params, (*wireUser).toModel)
}

type wireFiscalYear struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Active    bool   `json:"active"`
}

func (w *wireFiscalYear) toModel() (model.FiscalYear, error) {
	start, err := time.Parse("2006-01-02", w.StartDate)
	if err != nil {
		return model.FiscalYear{}, fmt.Errorf("invalid fiscal year start %q: %w", w.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", w.EndDate)
	if err != nil {
		return model.FiscalYear{}, fmt.Errorf("invalid fiscal year end %q: %w", w.EndDate, err)
	}
	return model.FiscalYear{
		ID:        w.ID,
		Name:      w.Name,
		StartDate: start,
		EndDate:   end,
		Active:    w.Active,
	}, nil
}

// ListFiscalYears fetches one page of fiscal years.
func (c *Client) ListFiscalYears(ctx context.Context, params ListParams) (*Page[model.FiscalYear], error) {
	return listResource(ctx, c, "/fiscal-years/", params, (*wireFiscalYear).toModel)
}

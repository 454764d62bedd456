package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// ListParams are the server-side pagination and filter parameters shared by
// the paginated list endpoints.
type ListParams struct {
	Search   string
	Filters  map[string]string
	Page     int
	PageSize int
}

func (p ListParams) values() url.Values {
	params := url.Values{}
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		params.Set("search", p.Search)
	}
	for name, value := range p.Filters {
		if value != "" {
			params.Set(name, value)
		}
	}
	return params
}

// Page is one page of a server-paginated listing.
type Page[T any] struct {
	Results []T
	Count   int
	HasNext bool
}

type wireJournalLine struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type wireJournalEntry struct {
	ID          string            `json:"id,omitempty"`
	Date        string            `json:"date"`
	Reference   string            `json:"reference"`
	Description string            `json:"description"`
	Status      string            `json:"status,omitempty"`
	CreatedBy   string            `json:"created_by,omitempty"`
	ClientRef   string            `json:"client_ref,omitempty"`
	Lines       []wireJournalLine `json:"lines"`
}

func (w *wireJournalEntry) toModel() (model.JournalEntry, error) {
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("invalid entry date %q: %w", w.Date, err)
	}

	lines := make([]model.JournalLine, len(w.Lines))
	for i, l := range w.Lines {
		lines[i] = model.JournalLine{
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}

	return model.JournalEntry{
		ID:          w.ID,
		Date:        date,
		Reference:   w.Reference,
		Description: w.Description,
		Status:      model.JournalStatus(w.Status),
		CreatedBy:   w.CreatedBy,
		ClientRef:   w.ClientRef,
		Lines:       lines,
	}, nil
}

func journalToWire(entry *model.JournalEntry) wireJournalEntry {
	lines := make([]wireJournalLine, len(entry.Lines))
	for i, l := range entry.Lines {
		lines[i] = wireJournalLine{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return wireJournalEntry{
		Date:        entry.Date.Format("2006-01-02"),
		Reference:   entry.Reference,
		Description: entry.Description,
		ClientRef:   entry.ClientRef,
		Lines:       lines,
	}
}

// ListJournalEntries fetches one page of journal entries.
func (c *Client) ListJournalEntries(ctx context.Context, params ListParams) (*Page[model.JournalEntry], error) {
	var body struct {
		Next    *string            `json:"next"`
		Results []wireJournalEntry `json:"results"`
		Count   int                `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/journal-entries/", nil, params.values(), &body); err != nil {
		return nil, err
	}

	page := &Page[model.JournalEntry]{
		Results: make([]model.JournalEntry, 0, len(body.Results)),
		Count:   body.Count,
		HasNext: body.Next != nil,
	}
	for i := range body.Results {
		entry, err := body.Results[i].toModel()
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, entry)
	}
	return page, nil
}

// CreateJournalEntry submits a new journal entry. The entry must balance;
// an unbalanced entry is rejected before any network call. A ClientRef is
// generated when the caller did not set one.
func (c *Client) CreateJournalEntry(ctx context.Context, entry *model.JournalEntry) (*model.JournalEntry, error) {
	if !entry.Balanced() {
		return nil, common.NewUserError(
			fmt.Sprintf("debits (%s) must equal credits (%s)",
				entry.TotalDebit().StringFixed(2), entry.TotalCredit().StringFixed(2)),
			common.ErrUnbalancedEntry)
	}

	if entry.ClientRef == "" {
		entry.ClientRef = uuid.NewString()
	}

	var body wireJournalEntry
	if err := c.do(ctx, http.MethodPost, "/journal-entries/create/", journalToWire(entry), nil, &body); err != nil {
		return nil, err
	}

	created, err := body.toModel()
	if err != nil {
		return nil, err
	}
	return &created, nil
}

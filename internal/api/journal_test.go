package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/session"
)

func TestCreateJournalEntry_RejectsUnbalancedBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok", RefreshToken: "ref"})

	entry := &model.JournalEntry{
		Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Lines: []model.JournalLine{
			{AccountCode: "5100", Debit: decimal.NewFromInt(100)},
			{AccountCode: "1000", Credit: decimal.NewFromInt(90)},
		},
	}

	_, err := client.CreateJournalEntry(context.Background(), entry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnbalancedEntry))
	assert.Zero(t, calls.Load(), "validation failures must not reach the network")
}

func TestCreateJournalEntry_GeneratesClientRef(t *testing.T) {
	var received wireJournalEntry
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		received.ID = "je-1"
		received.Status = "draft"
		_ = json.NewEncoder(w).Encode(received)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok", RefreshToken: "ref"})

	entry := &model.JournalEntry{
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "Office rent accrual",
		Lines: []model.JournalLine{
			{AccountCode: "5100", Debit: decimal.NewFromInt(100)},
			{AccountCode: "1000", Credit: decimal.NewFromInt(100)},
		},
	}

	created, err := client.CreateJournalEntry(context.Background(), entry)
	require.NoError(t, err)

	assert.NotEmpty(t, received.ClientRef, "client_ref generated for idempotent resubmission")
	assert.Equal(t, "je-1", created.ID)
	assert.Equal(t, model.JournalDraft, created.Status)
	assert.Equal(t, "2025-07-01", received.Date)
}

func TestListJournalEntries_PaginationParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("page_size"))
		assert.Equal(t, "rent", r.URL.Query().Get("search"))
		assert.Equal(t, "posted", r.URL.Query().Get("status"))

		next := "/journal-entries/?page=3"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 45,
			"next":  next,
			"results": []wireJournalEntry{{
				ID:          "je-21",
				Date:        "2025-06-30",
				Description: "Monthly rent",
				Status:      "posted",
				Lines: []wireJournalLine{
					{AccountCode: "5100", Debit: decimal.NewFromInt(1500)},
					{AccountCode: "1000", Credit: decimal.NewFromInt(1500)},
				},
			}},
		})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok", RefreshToken: "ref"})

	page, err := client.ListJournalEntries(context.Background(), ListParams{
		Page:     2,
		PageSize: 20,
		Search:   "rent",
		Filters:  map[string]string{"status": "posted"},
	})
	require.NoError(t, err)

	assert.Equal(t, 45, page.Count)
	assert.True(t, page.HasNext)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "je-21", page.Results[0].ID)
	assert.True(t, page.Results[0].Balanced())
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), page.Results[0].Date)
}

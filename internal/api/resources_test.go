package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/session"
)

func TestListLedgerEntries_DecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ledger/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 51,
			"next": "/ledger/?page=3",
			"results": [{
				"id": "l1",
				"date": "2026-02-10",
				"account_code": "1010",
				"account_name": "Cash",
				"description": "Opening balance",
				"reference": "OB-1",
				"debit": "100.00",
				"credit": "0",
				"balance": "100.00"
			}]
		}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok"})

	page, err := client.ListLedgerEntries(context.Background(), ListParams{Page: 2, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 51, page.Count)
	assert.True(t, page.HasNext)
	require.Len(t, page.Results, 1)

	entry := page.Results[0]
	assert.Equal(t, "1010", entry.AccountCode)
	assert.Equal(t, "2026-02-10", entry.Date.Format("2006-01-02"))
	assert.Equal(t, "100.00", entry.Debit.StringFixed(2))
}

func TestListUsers_NullLastLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 2,
			"next": null,
			"results": [
				{"id": "u1", "name": "Dana", "email": "dana@example.com", "role": "clerk", "active": true, "last_login": null},
				{"id": "u2", "name": "Riley", "email": "riley@example.com", "role": "admin", "active": true, "last_login": "2026-02-01T09:00:00Z"}
			]
		}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok"})

	page, err := client.ListUsers(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.False(t, page.HasNext)
	require.Len(t, page.Results, 2)

	assert.True(t, page.Results[0].LastLogin.IsZero(), "never-logged-in user has zero LastLogin")
	assert.Equal(t, model.RoleAdmin, page.Results[1].Role)
	assert.False(t, page.Results[1].LastLogin.IsZero())
}

func TestListFiscalYears_InvalidDateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 1,
			"next": null,
			"results": [{"id": 7, "name": "FY2026", "start_date": "not-a-date", "end_date": "2026-12-31", "active": true}]
		}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok"})

	_, err := client.ListFiscalYears(context.Background(), ListParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fiscal year start")
}

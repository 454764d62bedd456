package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/session"
)

func newTestClient(t *testing.T, serverURL string, sess *session.Session) (*Client, *session.Store) {
	t.Helper()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if sess != nil {
		require.NoError(t, store.Save(sess))
	}

	client, err := NewClient(serverURL, store)
	require.NoError(t, err)
	return client, store
}

func TestLogin_PayloadSelection(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantKey    string
		absentKey  string
	}{
		{name: "email identifier", identifier: "user@example.com", wantKey: "email", absentKey: "phone_number"},
		{name: "phone identifier", identifier: "09171234567", wantKey: "phone_number", absentKey: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/login/", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
				_ = json.NewEncoder(w).Encode(map[string]any{
					"access":  "tok-a",
					"refresh": "tok-r",
					"user":    map[string]string{"id": "u1", "name": "Admin", "email": "user@example.com"},
				})
			}))
			defer server.Close()

			client, store := newTestClient(t, server.URL, nil)
			result, err := client.Login(context.Background(), tt.identifier, "hunter2")
			require.NoError(t, err)

			assert.Equal(t, tt.identifier, received[tt.wantKey])
			assert.NotContains(t, received, tt.absentKey)
			assert.Equal(t, "hunter2", received["password"])
			assert.Equal(t, "u1", result.UserID)

			saved, err := store.Load()
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Equal(t, "tok-a", saved.AccessToken)
			assert.Equal(t, "tok-r", saved.RefreshToken)
			assert.True(t, client.Authenticated())
		})
	}
}

func TestLogin_FailureSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "invalid credentials"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)
	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Detail)
	assert.False(t, client.Authenticated())
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"fiscal_year": "FY2025"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok-a", RefreshToken: "tok-r"})
	_, err := client.BudgetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-a", gotAuth)
}

func TestRequest_RefreshRetryOnce(t *testing.T) {
	var refreshCalls, dataCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			refreshCalls.Add(1)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "tok-r", body["refresh"])
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "tok-new"})
		case "/dashboard/budget-summary/":
			dataCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok-new" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"fiscal_year": "FY2025"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, &session.Session{AccessToken: "tok-stale", RefreshToken: "tok-r"})

	summary, err := client.BudgetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FY2025", summary.FiscalYear)

	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one refresh call")
	assert.Equal(t, int32(2), dataCalls.Load(), "original plus exactly one retry")

	// The refreshed token must be persisted for subsequent invocations.
	saved, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "tok-new", saved.AccessToken)
	assert.Equal(t, "tok-r", saved.RefreshToken)
}

func TestRequest_RetriedRequestStill401Propagates(t *testing.T) {
	var refreshCalls, dataCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			refreshCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "tok-new"})
		default:
			dataCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "still unauthorized"})
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok-stale", RefreshToken: "tok-r"})

	_, err := client.BudgetSummary(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	assert.Equal(t, int32(1), refreshCalls.Load(), "no second refresh after a retried 401")
	assert.Equal(t, int32(2), dataCalls.Load())
}

func TestRequest_NoRefreshTokenLogsOut(t *testing.T) {
	var refreshCalls atomic.Int32
	var loggedOut atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(&session.Session{AccessToken: "tok-stale"}))

	client, err := NewClient(server.URL, store, WithLogoutHandler(func() { loggedOut.Store(true) }))
	require.NoError(t, err)

	_, err = client.BudgetSummary(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoRefreshToken))

	assert.Zero(t, refreshCalls.Load(), "refresh endpoint must not be called without a refresh token")
	assert.True(t, loggedOut.Load())
	assert.False(t, client.Authenticated())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved, "durable session cleared on logout")
}

func TestRequest_RefreshFailureLogsOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "refresh token expired"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, &session.Session{AccessToken: "tok-stale", RefreshToken: "tok-dead"})

	_, err := client.BudgetSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh token expired")
	assert.False(t, client.Authenticated())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRefresh_SingleFlightSkipsRedundantRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			refreshCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "tok-new"})
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, &session.Session{AccessToken: "tok-stale", RefreshToken: "tok-r"})

	token, err := client.refresh(context.Background(), "tok-stale")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)

	// A second caller still holding the stale token gets the already
	// refreshed one without another refresh call.
	token, err = client.refresh(context.Background(), "tok-stale")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestLogout_Idempotent(t *testing.T) {
	var logoutCalls atomic.Int32

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(&session.Session{AccessToken: "tok-a", RefreshToken: "tok-r"}))

	client, err := NewClient("http://localhost:0", store, WithLogoutHandler(func() { logoutCalls.Add(1) }))
	require.NoError(t, err)

	require.NoError(t, client.Logout())
	require.NoError(t, client.Logout())
	assert.False(t, client.Authenticated())
	assert.Equal(t, int32(2), logoutCalls.Load())
}

func TestPasswordReset_PassThrough(t *testing.T) {
	var resetBody, confirmBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/password/request-reset/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&resetBody))
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "reset link sent"})
		case "/password/reset/confirm/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&confirmBody))
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "password updated"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)

	require.NoError(t, client.RequestPasswordReset(context.Background(), "user@example.com"))
	assert.Equal(t, "user@example.com", resetBody["email"])

	require.NoError(t, client.ConfirmPasswordReset(context.Background(), "uid-1", "tok-reset", "newpass123"))
	assert.Equal(t, "uid-1", confirmBody["uid"])
	assert.Equal(t, "tok-reset", confirmBody["token"])
	assert.Equal(t, "newpass123", confirmBody["password"])
}

func TestExtractErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail key", body: `{"detail":"nope"}`, want: "nope"},
		{name: "error key", body: `{"error":"bad input"}`, want: "bad input"},
		{name: "message key", body: `{"message":"done"}`, want: "done"},
		{name: "field validation list", body: `{"amount":["must be positive"]}`, want: "amount: must be positive"},
		{name: "not json", body: `<html>502</html>`, want: ""},
		{name: "empty object", body: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractErrorDetail([]byte(tt.body)))
		})
	}
}

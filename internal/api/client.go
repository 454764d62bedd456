// Package api implements the authenticated REST client for the budget
// backend. One Client is constructed at startup and owns the session: it
// attaches the bearer token to every request, transparently recovers from a
// single expired-access-token failure per request, and clears the session
// when recovery is impossible.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/session"
)

// Client is the authenticated API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	store      *session.Store
	onLogout   func()
	baseURL    string

	mu   sync.Mutex // guards sess; held across the refresh path
	sess *session.Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogoutHandler registers a hook invoked when the session is cleared,
// so the caller can route the user back to login.
func WithLogoutHandler(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

// NewClient creates a client for the given base URL, loading any persisted
// session from the store.
func NewClient(baseURL string, store *session.Store, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, common.NewUserError("API base URL is not configured", common.ErrMissingConfig)
	}

	sess, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sess: sess,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Client) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	copied := *c.sess
	return &copied
}

// Authenticated reports whether an access token is currently held.
func (c *Client) Authenticated() bool {
	return c.Session().Authenticated()
}

// accessToken reads the latest access token. Requests read it at send time,
// never at call-construction time, so a retry after refresh cannot pick up
// a stale token.
func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.AccessToken
}

// do performs an authenticated request. On a 401 it attempts the one-shot
// refresh-and-retry protocol; every other failure propagates unchanged.
func (c *Client) do(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	token := c.accessToken()
	resp, err := c.send(ctx, method, path, payload, params, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		// One retry per original request. refresh either returns a token
		// that was valid when it completed, or clears the session.
		newToken, refreshErr := c.refresh(ctx, token)
		if refreshErr != nil {
			return refreshErr
		}

		resp, err = c.send(ctx, method, path, payload, params, newToken)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			// Already retried once; propagate rather than loop.
			return decodeError(resp)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	return decodeBody(resp, out)
}

// send issues one HTTP request with the given token. Network failures
// propagate as-is.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, params url.Values, token string) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// refresh exchanges the refresh token for a new access token. staleToken is
// the access token the failed request carried; if another request already
// refreshed in the meantime the current token is returned without a second
// refresh call (single-flight).
func (c *Client) refresh(ctx context.Context, staleToken string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil && c.sess.AccessToken != "" && c.sess.AccessToken != staleToken {
		return c.sess.AccessToken, nil
	}

	if c.sess == nil || c.sess.RefreshToken == "" {
		c.logoutLocked()
		return "", common.NewUserError("session expired, please log in again", common.ErrNoRefreshToken)
	}

	slog.Debug("access token rejected, refreshing")

	payload, err := json.Marshal(map[string]string{"refresh": c.sess.RefreshToken})
	if err != nil {
		return "", fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/refresh/", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logoutLocked()
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp)
		c.logoutLocked()
		return "", fmt.Errorf("token refresh rejected: %w", apiErr)
	}

	var refreshed struct {
		Access string `json:"access"`
	}
	if err := decodeBody(resp, &refreshed); err != nil {
		c.logoutLocked()
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	c.sess.AccessToken = refreshed.Access
	if err := c.store.Save(c.sess); err != nil {
		slog.Warn("failed to persist refreshed token", "error", err)
	}

	slog.Debug("access token refreshed")
	return refreshed.Access, nil
}

// Logout clears the session from memory and durable storage and notifies
// the logout handler. Safe to call repeatedly.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logoutLocked()
}

func (c *Client) logoutLocked() error {
	c.sess = nil
	err := c.store.Clear()
	if c.onLogout != nil {
		c.onLogout()
	}
	return err
}

func decodeBody(resp *http.Response, out any) error {
	defer drain(resp)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

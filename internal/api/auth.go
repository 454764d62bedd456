package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/session"
)

// LoginResult is the authenticated user returned by a successful login.
type LoginResult struct {
	UserID    string
	UserName  string
	UserEmail string
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login authenticates with an email address or a phone number. Identifiers
// containing '@' are submitted as email, anything else as phone_number. On
// success both tokens are persisted and the session is marked authenticated.
// Login never retries; a failure surfaces the server's error message.
func (c *Client) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	payload := map[string]string{"password": password}
	if strings.Contains(identifier, "@") {
		payload["email"] = identifier
	} else {
		payload["phone_number"] = identifier
	}

	var body loginResponse
	if err := c.doUnauthenticated(ctx, http.MethodPost, "/login/", payload, &body); err != nil {
		return nil, err
	}

	sess := &session.Session{
		AccessToken:  body.Access,
		RefreshToken: body.Refresh,
		UserID:       body.User.ID,
		UserName:     body.User.Name,
		UserEmail:    body.User.Email,
		LoggedInAt:   time.Now(),
	}

	c.mu.Lock()
	c.sess = sess
	err := c.store.Save(sess)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &LoginResult{
		UserID:    body.User.ID,
		UserName:  body.User.Name,
		UserEmail: body.User.Email,
	}, nil
}

// doUnauthenticated issues a request with no bearer token and no refresh
// handling: login and the password-reset endpoints.
func (c *Client) doUnauthenticated(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, nil, "")
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	return decodeBody(resp, out)
}

// RequestPasswordReset asks the backend to email a reset link. Success is
// simply the absence of an error.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doUnauthenticated(ctx, http.MethodPost, "/password/request-reset/",
		map[string]string{"email": email}, nil)
}

// ConfirmPasswordReset completes a password reset with the uid and token
// from the reset link.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	return c.doUnauthenticated(ctx, http.MethodPost, "/password/reset/confirm/",
		map[string]string{"uid": uid, "token": token, "password": newPassword}, nil)
}

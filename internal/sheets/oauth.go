package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// OAuth2Config holds the OAuth2 client credentials and where to persist the
// resulting token.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
}

const (
	callbackAddr = ":8080"
	callbackPath = "/callback"
	authTimeout  = 5 * time.Minute
)

func (c OAuth2Config) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// callbackServer is a short-lived localhost listener that captures the
// authorization code Google redirects back with.
type callbackServer struct {
	srv   *http.Server
	codes chan string
	errs  chan error
}

func startCallbackServer() *callbackServer {
	cs := &callbackServer{
		codes: make(chan string, 1),
		errs:  make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			cs.errs <- fmt.Errorf("no authorization code received")
			writeCallbackPage(w, "Authentication Failed", "No authorization code received. Please try again.")
			return
		}
		cs.codes <- code
		writeCallbackPage(w, "Authentication Successful!", "You can close this window and return to the terminal.")
	})

	cs.srv = &http.Server{Addr: callbackAddr, Handler: mux}
	go func() {
		if err := cs.srv.ListenAndServe(); err != http.ErrServerClosed {
			cs.errs <- fmt.Errorf("failed to start callback server: %w", err)
		}
	}()

	return cs
}

func writeCallbackPage(w http.ResponseWriter, title, detail string) {
	_, _ = fmt.Fprintf(w, `<html><body>
		<h1>%s</h1>
		<p>%s</p>
		<script>window.setTimeout(function(){window.close();}, 3000);</script>
	</body></html>`, title, detail)
}

// wait blocks until the callback delivers a code, an error occurs, or the
// timeout elapses, then shuts the listener down.
func (cs *callbackServer) wait(ctx context.Context) (string, error) {
	defer func() {
		if err := cs.srv.Shutdown(ctx); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	select {
	case code := <-cs.codes:
		return code, nil
	case err := <-cs.errs:
		return "", err
	case <-time.After(authTimeout):
		return "", fmt.Errorf("authentication timeout - no response received within %s", authTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// AuthenticateOAuth2Interactive runs the browser-based OAuth2 flow: print
// the consent URL, capture the redirect on localhost, exchange the code, and
// persist the token.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	oauthConfig := config.oauthConfig("http://localhost" + callbackAddr + callbackPath)
	server := startCallbackServer()

	// Offline access so Google returns a refresh token.
	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	slog.Info("Google Sheets authentication required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)
	slog.Info("Waiting for authentication...")

	authCode, err := server.wait(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Received authorization code")

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token to file", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved successfully", "file", config.TokenFile)
		}
	}

	return token, nil
}

// GetOrCreateToken loads and, if needed, refreshes a previously saved token,
// falling back to the interactive flow when none exists.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := loadToken(config.TokenFile); err == nil {
			slog.Info("Loaded existing token from file")
			return refreshTokenIfNeeded(ctx, config, token)
		}
		slog.Info("No existing token found, starting OAuth2 flow")
	}

	return AuthenticateOAuth2Interactive(ctx, config)
}

// refreshTokenIfNeeded exchanges the refresh token for a fresh access token
// when the saved one has expired.
func refreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	slog.Info("Token expired, refreshing...")

	newToken, err := config.oauthConfig("").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if config.TokenFile != "" {
		if err := saveToken(config.TokenFile, newToken); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err)
		}
	}

	return newToken, nil
}

func loadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

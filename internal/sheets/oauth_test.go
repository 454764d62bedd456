package sheets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	require.NoError(t, saveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "token file must not be world-readable")

	loaded, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, loaded.Valid())
}

func TestLoadToken_MissingFile(t *testing.T) {
	_, err := loadToken(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestGetOrCreateToken_ReturnsValidSavedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	saved := &oauth2.Token{
		AccessToken:  "still-good",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, saveToken(path, saved))

	// A valid saved token short-circuits: no refresh call, no browser flow.
	token, err := GetOrCreateToken(context.Background(), OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenFile:    path,
	})
	require.NoError(t, err)
	assert.Equal(t, "still-good", token.AccessToken)
}

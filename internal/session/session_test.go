package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	sess := &Session{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		UserEmail:    "admin@example.com",
		LoggedInAt:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access-abc", loaded.AccessToken)
	assert.Equal(t, "refresh-xyz", loaded.RefreshToken)
	assert.Equal(t, "admin@example.com", loaded.UserEmail)
	assert.True(t, loaded.Authenticated())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.False(t, sess.Authenticated())
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	require.NoError(t, store.Save(&Session{AccessToken: "tok"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "second clear must succeed")

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_CanonicalKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	require.NoError(t, store.Save(&Session{AccessToken: "a", RefreshToken: "r"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"access_token"`)
	assert.Contains(t, string(raw), `"refresh_token"`)
}

package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testSession() Session {
	return Session{
		Token: &oauth2.Token{
			AccessToken: "token-123",
			TokenType:   "Bearer",
			Expiry:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		UserID:       "u-1",
		Email:        "kim@example.com",
		DisplayName:  "Kim",
		PasscodeHash: []byte("$2a$10$fakehash"),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "secrets"))

	require.NoError(t, store.Save(testSession()))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)
}

func TestFileStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "secrets")
	store := NewFileStore(dir)
	require.NoError(t, store.Save(testSession()))

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(dir, sessionFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionFileName), []byte("{not json"), 0600))

	store := NewFileStore(dir)
	_, err := store.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestFileStoreDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(testSession()))

	require.NoError(t, store.Delete())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Deleting again is fine.
	assert.NoError(t, store.Delete())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(testSession()))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testSession(), got)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

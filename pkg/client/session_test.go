package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewear", "session.json")
	store := NewFileSessionStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(&Session{Token: "tok-1", User: &User{ID: "u1", Name: "Ada"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := NewFileSessionStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "Ada", loaded.User.Name)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, store.Clear())
}

func TestFileSessionStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileSessionStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestMemorySessionStoreCopies(t *testing.T) {
	store := NewMemorySessionStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	session := &Session{Token: "tok-1"}
	require.NoError(t, store.Save(session))
	session.Token = "mutated"

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)

	require.NoError(t, store.Save(&Session{}))
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

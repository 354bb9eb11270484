package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileTokenStore(path)

	assert.Empty(t, store.Token(ScopeUser))

	require.NoError(t, store.SetToken(ScopeUser, "user-token"))
	require.NoError(t, store.SetToken(ScopeAdmin, "admin-token"))

	// A fresh store on the same file sees the persisted tokens.
	reopened := NewFileTokenStore(path)
	assert.Equal(t, "user-token", reopened.Token(ScopeUser))
	assert.Equal(t, "admin-token", reopened.Token(ScopeAdmin))

	require.NoError(t, reopened.ClearToken(ScopeUser))
	assert.Empty(t, reopened.Token(ScopeUser))
	assert.Equal(t, "admin-token", reopened.Token(ScopeAdmin))
}

func TestFileTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileTokenStore(path)
	assert.Empty(t, store.Token(ScopeUser))
	assert.Empty(t, store.Token(ScopeAdmin))

	// Writing through the store replaces the corrupt file.
	require.NoError(t, store.SetToken(ScopeUser, "user-token"))
	assert.Equal(t, "user-token", NewFileTokenStore(path).Token(ScopeUser))
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	store.SetToken(ScopeUser, "abc")
	assert.Equal(t, "abc", store.Token(ScopeUser))
	assert.Empty(t, store.Token(ScopeAdmin))

	store.ClearToken(ScopeUser)
	assert.Empty(t, store.Token(ScopeUser))
}

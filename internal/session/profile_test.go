package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeupnow/wakeup/internal/models"
)

func tempProfileStore(t *testing.T) FileProfileStore {
	t.Helper()
	return FileProfileStore{Path: filepath.Join(t.TempDir(), "profile.json")}
}

func TestFileProfileStoreRoundTrip(t *testing.T) {
	store := tempProfileStore(t)
	user := User{ID: "u1", Name: "A", Email: "a@b.com", Role: models.RoleAdmin}

	require.NoError(t, store.Save(user))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, user, loaded)
}

func TestFileProfileStoreMissingFile(t *testing.T) {
	store := tempProfileStore(t)

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileProfileStoreCorruptedFile(t *testing.T) {
	store := tempProfileStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte("{not json"), 0600))

	_, _, err := store.Load()
	assert.Error(t, err)
}

func TestFileProfileStoreRejectsPartialRecord(t *testing.T) {
	store := tempProfileStore(t)
	require.NoError(t, os.WriteFile(store.Path, []byte(`{"name":"A"}`), 0600))

	_, _, err := store.Load()
	assert.Error(t, err)
}

func TestFileProfileStoreDeleteIsIdempotent(t *testing.T) {
	store := tempProfileStore(t)
	require.NoError(t, store.Save(User{ID: "u1"}))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

package session

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakeupnow/wakeup/internal/models"
)

// mockTokenStore is an in-memory token store with optional failure injection
type mockTokenStore struct {
	token    string
	hasToken bool
	saveErr  error
	loadErr  error
}

func (m *mockTokenStore) Save(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	m.hasToken = true
	return nil
}

func (m *mockTokenStore) Load() (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if !m.hasToken {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *mockTokenStore) Delete() error {
	m.token = ""
	m.hasToken = false
	return nil
}

// mockProfileStore is an in-memory profile store with optional corruption
type mockProfileStore struct {
	user      User
	hasUser   bool
	corrupted bool
	saveErr   error
}

func (m *mockProfileStore) Save(user User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.user = user
	m.hasUser = true
	return nil
}

func (m *mockProfileStore) Load() (User, bool, error) {
	if m.corrupted {
		return User{}, false, errors.New("failed to parse profile file")
	}
	if !m.hasUser {
		return User{}, false, nil
	}
	return m.user, true, nil
}

func (m *mockProfileStore) Delete() error {
	m.user = User{}
	m.hasUser = false
	m.corrupted = false
	return nil
}

func testUser() User {
	return User{ID: "u1", Name: "A", Email: "a@b.com", Role: models.RoleUser}
}

func newTestStore() (*Store, *mockTokenStore, *mockProfileStore) {
	tokens := &mockTokenStore{}
	profiles := &mockProfileStore{}
	return NewStore(tokens, profiles, zerolog.Nop()), tokens, profiles
}

func TestLoadWithoutPersistedSession(t *testing.T) {
	store, _, _ := newTestStore()
	store.Load()

	snap := store.Current()
	assert.False(t, snap.IsAuthenticated)
	assert.Empty(t, snap.Token)
	assert.Empty(t, snap.User.ID)
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	store, tokens, profiles := newTestStore()
	require.NoError(t, tokens.Save("t1"))
	require.NoError(t, profiles.Save(testUser()))

	store.Load()

	snap := store.Current()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "t1", snap.Token)
	assert.Equal(t, "u1", snap.User.ID)
}

func TestLoadDiscardsPartialPair(t *testing.T) {
	// Token present without a profile must be discarded as a unit
	store, tokens, _ := newTestStore()
	require.NoError(t, tokens.Save("t1"))

	store.Load()

	snap := store.Current()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, tokens.hasToken, "orphan token should be deleted")
}

func TestLoadDiscardsCorruptedProfile(t *testing.T) {
	store, tokens, profiles := newTestStore()
	require.NoError(t, tokens.Save("t1"))
	profiles.hasUser = true
	profiles.corrupted = true

	store.Load()

	snap := store.Current()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, tokens.hasToken)
	assert.False(t, profiles.hasUser)
}

func TestLoginPersistsBothFields(t *testing.T) {
	store, tokens, profiles := newTestStore()

	require.NoError(t, store.Login(testUser(), "t1"))

	snap := store.Current()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "t1", snap.Token)
	assert.Equal(t, "a@b.com", snap.User.Email)
	assert.True(t, tokens.hasToken)
	assert.True(t, profiles.hasUser)
}

func TestLoginRejectsPartialSession(t *testing.T) {
	store, _, _ := newTestStore()

	assert.Error(t, store.Login(testUser(), ""))
	assert.Error(t, store.Login(User{}, "t1"))
	assert.False(t, store.Current().IsAuthenticated)
}

func TestLoginRollsBackOnTokenSaveFailure(t *testing.T) {
	store, tokens, profiles := newTestStore()
	require.NoError(t, store.Login(testUser(), "t1"))

	// Next login fails to persist the token; prior state must survive
	// intact both in memory and in the persisted pair
	tokens.saveErr = errors.New("keyring unavailable")
	other := User{ID: "u2", Name: "B", Email: "b@c.com", Role: models.RoleUser}
	err := store.Login(other, "t2")
	require.Error(t, err)

	snap := store.Current()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "t1", snap.Token, "in-memory state must be untouched after failed login")
	assert.Equal(t, "u1", snap.User.ID)

	assert.True(t, tokens.hasToken)
	assert.Equal(t, "t1", tokens.token, "prior token must stay persisted")
	assert.True(t, profiles.hasUser)
	assert.Equal(t, "u1", profiles.user.ID, "prior profile must be restored")
}

func TestFailedReloginSurvivesRestart(t *testing.T) {
	store, tokens, profiles := newTestStore()
	require.NoError(t, store.Login(testUser(), "t1"))

	tokens.saveErr = errors.New("keyring unavailable")
	require.Error(t, store.Login(User{ID: "u2", Name: "B", Email: "b@c.com", Role: models.RoleUser}, "t2"))
	tokens.saveErr = nil

	// A fresh process over the same backends must come back up with the
	// prior session, not discard it as a half-written pair
	fresh := NewStore(tokens, profiles, zerolog.Nop())
	fresh.Load()

	snap := fresh.Current()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "t1", snap.Token)
	assert.Equal(t, "u1", snap.User.ID)
}

func TestLoginTokenFailureWithoutPriorSessionClearsBoth(t *testing.T) {
	store, tokens, profiles := newTestStore()
	tokens.saveErr = errors.New("keyring unavailable")

	require.Error(t, store.Login(testUser(), "t1"))

	assert.False(t, tokens.hasToken)
	assert.False(t, profiles.hasUser)
	assert.False(t, store.Current().IsAuthenticated)
}

func TestLoginFailurePersistenceNeverHalfWritten(t *testing.T) {
	store, tokens, profiles := newTestStore()
	profiles.saveErr = errors.New("disk full")

	err := store.Login(testUser(), "t1")
	require.Error(t, err)

	assert.False(t, tokens.hasToken)
	assert.False(t, profiles.hasUser)
	assert.False(t, store.Current().IsAuthenticated)
}

func TestLogoutClearsEverything(t *testing.T) {
	store, tokens, profiles := newTestStore()
	require.NoError(t, store.Login(testUser(), "t1"))

	store.Logout()

	snap := store.Current()
	assert.False(t, snap.IsAuthenticated)
	assert.Empty(t, snap.Token)
	assert.Empty(t, snap.User.ID)
	assert.False(t, tokens.hasToken)
	assert.False(t, profiles.hasUser)
}

func TestLogoutWithoutPriorLogin(t *testing.T) {
	store, _, _ := newTestStore()

	// Must succeed even when there is nothing to clear
	store.Logout()
	assert.False(t, store.Current().IsAuthenticated)
}

func TestSubscribersNotifiedOnEveryMutation(t *testing.T) {
	store, _, _ := newTestStore()

	var seen []bool
	store.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap.IsAuthenticated)
	})

	require.NoError(t, store.Login(testUser(), "t1"))
	store.Logout()

	assert.Equal(t, []bool{true, false}, seen)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	store, _, _ := newTestStore()

	calls := 0
	unsubscribe := store.Subscribe(func(Snapshot) { calls++ })

	require.NoError(t, store.Login(testUser(), "t1"))
	unsubscribe()
	store.Logout()

	assert.Equal(t, 1, calls)
}

package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Store owns the session state. All mutation passes through Login and
// Logout so the "user present iff token present" invariant is enforced in
// one place. The store is passed explicitly to components that need it;
// there is no package-level instance.
type Store struct {
	tokens   TokenStore
	profiles ProfileStore
	logger   zerolog.Logger

	authenticated bool
	user          User
	token         string

	subscribers []func(Snapshot)
}

// NewStore creates a session store backed by the given persistence layers
func NewStore(tokens TokenStore, profiles ProfileStore, logger zerolog.Logger) *Store {
	return &Store{
		tokens:   tokens,
		profiles: profiles,
		logger:   logger,
	}
}

// Load restores a persisted session at process start. A missing, corrupted
// or partially-written token/profile pair is discarded as a unit and the
// session is left absent; this never returns an error to the caller.
func (s *Store) Load() {
	token, err := s.tokens.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			s.logger.Warn().Err(err).Msg("Failed to load session token, discarding persisted session")
		}
		s.clearPersisted()
		return
	}

	user, found, err := s.profiles.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Corrupted session profile, discarding persisted session")
		s.clearPersisted()
		return
	}
	if !found {
		// Token without profile is a partial write
		s.logger.Warn().Msg("Session token present without profile, discarding persisted session")
		s.clearPersisted()
		return
	}

	s.authenticated = true
	s.user = user
	s.token = token
	s.notify()
}

// Login sets the session to present and persists both fields. Persistence is
// both-or-neither: if the token write fails, the prior persisted pair is
// restored when one existed and fully cleared otherwise, and the in-memory
// state is left untouched.
func (s *Store) Login(user User, token string) error {
	if token == "" || user.ID == "" {
		return fmt.Errorf("login requires both a token and a user")
	}

	prior, hadPrior, err := s.profiles.Load()
	if err != nil {
		hadPrior = false
	}

	if err := s.profiles.Save(user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.tokens.Save(token); err != nil {
		// The keyring still holds the prior token, so put the prior
		// profile back next to it; without a prior pair, clear both.
		if hadPrior {
			if restoreErr := s.profiles.Save(prior); restoreErr != nil {
				s.logger.Warn().Err(restoreErr).Msg("Failed to restore profile after token save failure")
			}
		} else {
			s.clearPersisted()
		}
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.authenticated = true
	s.user = user
	s.token = token
	s.notify()
	return nil
}

// Logout clears the in-memory and persisted session unconditionally.
// Remote logout is the caller's concern and its outcome is irrelevant here.
func (s *Store) Logout() {
	s.clearPersisted()
	s.authenticated = false
	s.user = User{}
	s.token = ""
	s.notify()
}

// Current returns an immutable snapshot of the session state
func (s *Store) Current() Snapshot {
	return Snapshot{
		IsAuthenticated: s.authenticated,
		User:            s.user,
		Token:           s.token,
	}
}

// Subscribe registers an observer called synchronously after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subscribers = append(s.subscribers, fn)
	idx := len(s.subscribers) - 1
	return func() {
		s.subscribers[idx] = nil
	}
}

func (s *Store) notify() {
	snap := s.Current()
	for _, fn := range s.subscribers {
		if fn != nil {
			fn(snap)
		}
	}
}

func (s *Store) clearPersisted() {
	if err := s.tokens.Delete(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete persisted token")
	}
	if err := s.profiles.Delete(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete persisted profile")
	}
}

package session

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Store is the explicit holder of session state.
//
// All accessors are safe for concurrent use. Writes are last-write-wins with no ordering between callers.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *log.Logger

	session *models.Session
	csrf    string
	trips   []models.Trip
}

// NewStore creates an anonymous store backed by storage.
func NewStore(storage Storage, logger *log.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Store{storage: storage, logger: logger, trips: []models.Trip{}}
}

// Session returns a copy of the current session with the CSRF token filled in, or nil when anonymous.
func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	out := *s.session
	out.CSRFToken = s.csrf
	return &out
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// AuthToken returns the bearer token of the current session, or "".
func (s *Store) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AuthToken
}

// SetSession replaces the in-memory session and mirrors its identity keys to storage.
//
// Passing nil removes the keys. The in-memory value is updated even if storage fails.
func (s *Store) SetSession(sess *models.Session) error {
	s.mu.Lock()
	if sess == nil {
		s.session = nil
	} else {
		cp := *sess
		cp.CSRFToken = ""
		s.session = &cp
	}
	s.mu.Unlock()

	if sess == nil {
		return s.deleteKeys()
	}

	var errs []error
	for key, value := range map[string]string{
		KeyToken:    sess.AuthToken,
		KeyUserID:   strconv.Itoa(sess.UserID),
		KeyUsername: sess.Username,
	} {
		if err := s.storage.Set(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CSRFToken returns the most recently harvested CSRF token.
func (s *Store) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csrf
}

// SetCSRFToken overwrites the cached CSRF token.
func (s *Store) SetCSRFToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrf = token
}

// Trips returns a copy of the last-fetched trip collection.
func (s *Store) Trips() []models.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trips)
}

// SetTrips replaces the trip collection. A nil slice is stored as empty.
func (s *Store) SetTrips(trips []models.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trips == nil {
		s.trips = []models.Trip{}
		return
	}
	s.trips = slices.Clone(trips)
}

// Restore rebuilds the session from storage.
//
// A session is reconstructed only when both the user id and the token are non-empty;
// otherwise the store stays anonymous and (nil, nil) is returned.
func (s *Store) Restore() (*models.Session, error) {
	token, _, err := s.storage.Get(KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	rawID, _, err := s.storage.Get(KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	username, _, err := s.storage.Get(KeyUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if token == "" || rawID == "" {
		s.forget()
		return nil, nil
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		s.logger.Warn("ignoring stored session with malformed user id", "userId", rawID)
		s.forget()
		return nil, nil
	}

	s.mu.Lock()
	s.session = &models.Session{UserID: id, Username: username, AuthToken: token}
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", username, "id", id)
	return s.Session(), nil
}

// Clear logs out: the session is dropped, trips are emptied and the identity keys are deleted.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.session = nil
	s.trips = []models.Trip{}
	s.mu.Unlock()

	return s.deleteKeys()
}

// TokenExpiry reads the exp claim of the current token without verifying its signature.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.AuthToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// forget drops the in-memory session so it agrees with anonymous storage.
func (s *Store) forget() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

func (s *Store) deleteKeys() error {
	var errs []error
	for _, key := range []string{KeyToken, KeyUserID, KeyUsername} {
		if err := s.storage.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

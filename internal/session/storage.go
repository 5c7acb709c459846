package session

import (
	"fmt"
	"sync"

	"github.com/desertthunder/tripx/internal/shared"
)

// Durable keys mirrored from the session.
const (
	KeyToken    = "token"
	KeyUserID   = "userId"
	KeyUsername = "username"
)

// Storage is a durable string key-value store.
//
// Get reports ok=false for a missing key; that is not an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is an in-process [Storage] for tests and throwaway runs.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	// Fail makes every call return [shared.ErrStorage] when set.
	Fail bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail {
		return "", false, fmt.Errorf("%w: get %s", shared.ErrStorage, key)
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("%w: set %s", shared.ErrStorage, key)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("%w: delete %s", shared.ErrStorage, key)
	}
	delete(m.values, key)
	return nil
}

package session

import (
	"errors"
	"fmt"
	"time"

	"sheetview/domain/table"
	"sheetview/internal"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Manager keeps sessions in memory. The least recently used session is
// evicted when the store is full, and idle sessions expire after the TTL.
type Manager struct {
	cache *expirable.LRU[string, *Session]
}

// NewManager creates a store holding at most size sessions
func NewManager(size int, ttl time.Duration) *Manager {
	onEvict := func(id string, s *Session) {
		internal.DefaultLogger.Debug("[Sessions] evicted %s (%s)", id, s.FileName)
	}
	return &Manager{cache: expirable.NewLRU[string, *Session](size, onEvict, ttl)}
}

// Create registers a session for a freshly loaded table
func (m *Manager) Create(fileName string, t *table.Table) (*Session, error) {
	s := newSession(uuid.NewString(), fileName)
	if err := s.Load(t); err != nil {
		return nil, err
	}
	m.cache.Add(s.ID, s)
	internal.DefaultLogger.Info("[Sessions] created %s for %s (%d rows)", s.ID, fileName, t.NumRows())
	return s, nil
}

// Get looks up a live session
func (m *Manager) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	// the cache only renews expiry on Add, so a hit re-adds to keep the TTL idle-based
	m.cache.Add(id, s)
	return s, nil
}

// Delete drops a session
func (m *Manager) Delete(id string) bool {
	return m.cache.Remove(id)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	return m.cache.Len()
}

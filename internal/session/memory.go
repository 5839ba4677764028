package session

import (
	"context"
	"sync"
	"time"

	"github.com/clinicware/agendabot/pkg/logging"
)

// MemoryStore keeps sessions in process memory. Suitable for a single
// instance; swap in RedisStore for anything else.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logging.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *logging.Logger) *MemoryStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Get returns a copy of the stored session, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, patientID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Put stores the session, stamping UpdatedAt.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	cp := s.Clone()
	cp.UpdatedAt = time.Now()
	m.mu.Lock()
	m.sessions[cp.PatientID] = cp
	m.mu.Unlock()
	s.UpdatedAt = cp.UpdatedAt
	return nil
}

// Delete removes the session if present.
func (m *MemoryStore) Delete(_ context.Context, patientID string) error {
	m.mu.Lock()
	delete(m.sessions, patientID)
	m.mu.Unlock()
	return nil
}

// SweepOlderThan deletes sessions idle beyond ttl and reports how many went.
func (m *MemoryStore) SweepOlderThan(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs the periodic expiry sweep until ctx is cancelled. It
// runs independently of request handling and never blocks it beyond the
// store mutex.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := m.SweepOlderThan(ttl); removed > 0 {
					m.logger.Info("swept expired sessions", "removed", removed)
				}
			}
		}
	}()
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

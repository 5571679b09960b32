package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-process storage. Atomicity of
// register-or-evict comes from holding the mutex across the whole
// operation. Suitable for tests and single-instance deployments; shared
// deployments need the Redis or PostgreSQL store.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]map[string]*Session

	staleAfter time.Duration
	ticker     *time.Ticker
	done       chan struct{}
}

// NewMemoryStore creates an in-memory session store. With a positive
// reapInterval it runs its own staleness reaper, mirroring what the shared
// stores get from a backend worker.
func NewMemoryStore(staleAfter, reapInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		accounts:   make(map[uuid.UUID]map[string]*Session),
		staleAfter: staleAfter,
		done:       make(chan struct{}),
	}

	if reapInterval > 0 && staleAfter > 0 {
		store.ticker = time.NewTicker(reapInterval)
		go store.reapLoop()
	}

	return store
}

// Register implements Store.
func (m *MemoryStore) Register(ctx context.Context, sess *Session, maxSessions int) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.accounts[sess.AccountID]
	if sessions == nil {
		sessions = make(map[string]*Session)
		m.accounts[sess.AccountID] = sessions
	}

	// Re-registration refreshes liveness but keeps the original CreatedAt.
	if existing, ok := sessions[sess.ID]; ok {
		existing.LastHeartbeatAt = sess.LastHeartbeatAt
		return nil
	}

	for maxSessions > 0 && len(sessions) >= maxSessions {
		delete(sessions, oldestSessionID(sessions))
	}

	sessionCopy := *sess
	sessions[sess.ID] = &sessionCopy
	return nil
}

// Heartbeat implements Store. Unknown sessions are a silent no-op.
func (m *MemoryStore) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.accounts[accountID][sessionID]; ok {
		sess.LastHeartbeatAt = at
	}
	return nil
}

// Remove implements Store. Removing an absent session is a no-op.
func (m *MemoryStore) Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, ok := m.accounts[accountID]
	if !ok {
		return nil
	}

	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(m.accounts, accountID)
	}
	return nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, accountID uuid.UUID) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.accounts[accountID]
	result := make([]*Session, 0, len(sessions))
	for _, sess := range sessions {
		sessionCopy := *sess
		result = append(result, &sessionCopy)
	}

	slices.SortFunc(result, compareEvictionOrder)
	return result, nil
}

// DeleteStale implements Store.
func (m *MemoryStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reclaimed int64
	for accountID, sessions := range m.accounts {
		for id, sess := range sessions {
			if sess.LastHeartbeatAt.Before(olderThan) {
				delete(sessions, id)
				reclaimed++
			}
		}
		if len(sessions) == 0 {
			delete(m.accounts, accountID)
		}
	}

	return reclaimed, nil
}

// Close stops the built-in reaper.
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
	return nil
}

func (m *MemoryStore) reapLoop() {
	for {
		select {
		case <-m.ticker.C:
			_, _ = m.DeleteStale(context.Background(), time.Now().Add(-m.staleAfter))
		case <-m.done:
			return
		}
	}
}

// oldestSessionID picks the eviction victim: oldest LastHeartbeatAt first,
// ties broken by session ID ascending so the choice is deterministic.
func oldestSessionID(sessions map[string]*Session) string {
	var victim *Session
	for _, sess := range sessions {
		if victim == nil || evictsBefore(sess, victim) {
			victim = sess
		}
	}
	return victim.ID
}

func evictsBefore(a, b *Session) bool {
	return compareEvictionOrder(a, b) < 0
}

func compareEvictionOrder(a, b *Session) int {
	if c := a.LastHeartbeatAt.Compare(b.LastHeartbeatAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

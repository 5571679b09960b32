package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/accesskit/pkg/session"
)

const maxSessions = 3

func newStore(t *testing.T) *session.MemoryStore {
	t.Helper()

	store := session.NewMemoryStore(0, 0) // reaper disabled
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func register(t *testing.T, store session.Store, accountID uuid.UUID, sessionID string, heartbeatAt time.Time) {
	t.Helper()

	err := store.Register(context.Background(), &session.Session{
		ID:              sessionID,
		AccountID:       accountID,
		TenantID:        uuid.New(),
		CreatedAt:       heartbeatAt,
		LastHeartbeatAt: heartbeatAt,
	}, maxSessions)
	require.NoError(t, err)
}

func sessionIDs(t *testing.T, store session.Store, accountID uuid.UUID) []string {
	t.Helper()

	sessions, err := store.List(context.Background(), accountID)
	require.NoError(t, err)

	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	return ids
}

func TestMemoryStore_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fourth registration evicts the oldest", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		base := time.Now().UTC()

		register(t, store, accountID, "s1", base)
		register(t, store, accountID, "s2", base.Add(time.Second))
		register(t, store, accountID, "s3", base.Add(2*time.Second))
		register(t, store, accountID, "s4", base.Add(3*time.Second))

		ids := sessionIDs(t, store, accountID)
		assert.Len(t, ids, maxSessions)
		assert.ElementsMatch(t, []string{"s2", "s3", "s4"}, ids)
	})

	t.Run("heartbeat refresh changes the eviction victim", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		base := time.Now().UTC()

		register(t, store, accountID, "s1", base)
		register(t, store, accountID, "s2", base.Add(time.Second))
		register(t, store, accountID, "s3", base.Add(2*time.Second))

		// s1 heartbeats, making s2 the least recently active.
		require.NoError(t, store.Heartbeat(ctx, accountID, "s1", base.Add(5*time.Second)))

		register(t, store, accountID, "s4", base.Add(6*time.Second))

		assert.ElementsMatch(t, []string{"s1", "s3", "s4"}, sessionIDs(t, store, accountID))
	})

	t.Run("identical heartbeats break ties by session id", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		at := time.Now().UTC()

		register(t, store, accountID, "b", at)
		register(t, store, accountID, "c", at)
		register(t, store, accountID, "a", at)
		register(t, store, accountID, "d", at.Add(time.Second))

		assert.ElementsMatch(t, []string{"b", "c", "d"}, sessionIDs(t, store, accountID))
	})

	t.Run("re-registration refreshes instead of evicting", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		base := time.Now().UTC()

		register(t, store, accountID, "s1", base)
		register(t, store, accountID, "s2", base.Add(time.Second))
		register(t, store, accountID, "s3", base.Add(2*time.Second))
		register(t, store, accountID, "s1", base.Add(3*time.Second))

		sessions, err := store.List(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		for _, sess := range sessions {
			if sess.ID == "s1" {
				assert.Equal(t, base.Add(3*time.Second), sess.LastHeartbeatAt)
			}
		}
	})

	t.Run("accounts are isolated", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountA, accountB := uuid.New(), uuid.New()
		at := time.Now().UTC()

		for i, id := range []string{"a1", "a2", "a3"} {
			register(t, store, accountA, id, at.Add(time.Duration(i)*time.Second))
		}
		register(t, store, accountB, "b1", at)

		register(t, store, accountA, "a4", at.Add(10*time.Second))

		assert.Len(t, sessionIDs(t, store, accountA), maxSessions)
		assert.Equal(t, []string{"b1"}, sessionIDs(t, store, accountB))
	})

	t.Run("rejects empty session id", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		err := store.Register(ctx, &session.Session{AccountID: uuid.New()}, maxSessions)
		assert.ErrorIs(t, err, session.ErrInvalidSession)
	})
}

func TestMemoryStore_Heartbeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("refreshes a live session", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		base := time.Now().UTC()
		register(t, store, accountID, "s1", base)

		require.NoError(t, store.Heartbeat(ctx, accountID, "s1", base.Add(time.Minute)))

		sessions, err := store.List(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, base.Add(time.Minute), sessions[0].LastHeartbeatAt)
	})

	t.Run("evicted session is a silent no-op", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()

		assert.NoError(t, store.Heartbeat(ctx, accountID, "gone", time.Now()))
	})
}

func TestMemoryStore_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("idempotent across teardown paths", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		accountID := uuid.New()
		register(t, store, accountID, "s1", time.Now().UTC())

		// Unmount, logout and unload may all fire for the same session.
		require.NoError(t, store.Remove(ctx, accountID, "s1"))
		require.NoError(t, store.Remove(ctx, accountID, "s1"))
		require.NoError(t, store.Remove(ctx, accountID, "s1"))

		assert.Empty(t, sessionIDs(t, store, accountID))
	})
}

func TestMemoryStore_DeleteStale(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(t)
	accountID := uuid.New()
	now := time.Now().UTC()

	register(t, store, accountID, "fresh", now)
	register(t, store, accountID, "stale", now.Add(-10*time.Minute))

	reclaimed, err := store.DeleteStale(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), reclaimed)
	assert.Equal(t, []string{"fresh"}, sessionIDs(t, store, accountID))
}

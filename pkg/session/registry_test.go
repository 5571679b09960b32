package session_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/accesskit/pkg/session"
)

// brokenStore simulates an unreachable backing store.
type brokenStore struct{}

func (brokenStore) Register(ctx context.Context, sess *session.Session, maxSessions int) error {
	return session.ErrStoreUnavailable
}

func (brokenStore) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error {
	return session.ErrStoreUnavailable
}

func (brokenStore) Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	return session.ErrStoreUnavailable
}

func (brokenStore) List(ctx context.Context, accountID uuid.UUID) ([]*session.Session, error) {
	return nil, session.ErrStoreUnavailable
}

func (brokenStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, session.ErrStoreUnavailable
}

// gatedStore blocks Register until released, so tests can interleave other
// registry calls with an in-flight registration.
type gatedStore struct {
	*session.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Register(ctx context.Context, sess *session.Session, maxSessions int) error {
	close(s.entered)
	<-s.release
	return s.MemoryStore.Register(ctx, sess, maxSessions)
}

// flakyHeartbeatStore registers fine but fails every heartbeat.
type flakyHeartbeatStore struct {
	*session.MemoryStore
	attempts atomic.Int64
}

func (s *flakyHeartbeatStore) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error {
	s.attempts.Add(1)
	return session.ErrStoreUnavailable
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("limit never causes failure", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(newStore(t)))
		accountID := uuid.New()
		tenantID := uuid.New()

		for i := 0; i < 10; i++ {
			err := registry.Register(ctx, accountID, tenantID, string(rune('a'+i)))
			require.NoError(t, err, "registration %d must succeed via eviction", i)
		}

		sessions, err := registry.Sessions(ctx, accountID)
		require.NoError(t, err)
		assert.Len(t, sessions, session.DefaultConfig().MaxSessions)
	})

	t.Run("store failure surfaces as RegistrationError", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(brokenStore{}))
		err := registry.Register(ctx, uuid.New(), uuid.New(), "s1")
		assert.ErrorIs(t, err, session.ErrRegistrationFailed)
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(newStore(t)))
		assert.ErrorIs(t, registry.Register(ctx, uuid.New(), uuid.New(), ""), session.ErrInvalidSession)
		assert.ErrorIs(t, registry.Register(ctx, uuid.Nil, uuid.New(), "s1"), session.ErrInvalidSession)
	})

	t.Run("non-positive bound falls back to the default", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		registry := session.New(
			session.WithStore(store),
			session.WithConfig(session.Config{MaxSessions: 0}),
		)
		accountID := uuid.New()

		for i := 0; i < 5; i++ {
			require.NoError(t, registry.Register(ctx, accountID, uuid.New(), string(rune('a'+i))))
		}

		sessions, err := store.List(ctx, accountID)
		require.NoError(t, err)
		assert.Len(t, sessions, session.DefaultConfig().MaxSessions)
	})
}

func TestRegistry_StartStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("heartbeat loop refreshes the session", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		registry := session.New(
			session.WithStore(store),
			session.WithHeartbeatInterval(10*time.Millisecond),
		)
		accountID := uuid.New()

		handle, err := registry.Start(ctx, accountID, uuid.New(), "tab-1")
		require.NoError(t, err)
		defer handle.Stop()

		initial, err := store.List(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, initial, 1)
		first := initial[0].LastHeartbeatAt

		require.Eventually(t, func() bool {
			sessions, err := store.List(ctx, accountID)
			if err != nil || len(sessions) != 1 {
				return false
			}
			return sessions[0].LastHeartbeatAt.After(first)
		}, time.Second, 5*time.Millisecond, "heartbeat loop must refresh last_heartbeat_at")
	})

	t.Run("stop removes the session and is idempotent", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)
		registry := session.New(
			session.WithStore(store),
			session.WithHeartbeatInterval(10*time.Millisecond),
		)
		accountID := uuid.New()

		handle, err := registry.Start(ctx, accountID, uuid.New(), "tab-1")
		require.NoError(t, err)

		handle.Stop()
		handle.Stop()

		sessions, err := store.List(ctx, accountID)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("heartbeat loop survives store failures", func(t *testing.T) {
		t.Parallel()

		store := &flakyHeartbeatStore{MemoryStore: session.NewMemoryStore(0, 0)}
		registry := session.New(
			session.WithStore(store),
			session.WithHeartbeatInterval(5*time.Millisecond),
		)
		handle, err := registry.Start(ctx, uuid.New(), uuid.New(), "tab-1")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return store.attempts.Load() >= 3
		}, time.Second, time.Millisecond, "loop must keep retrying after failures")
		assert.NotPanics(t, handle.Stop)
	})

	t.Run("start fails on broken store", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(brokenStore{}))
		_, err := registry.Start(ctx, uuid.New(), uuid.New(), "tab-1")
		assert.ErrorIs(t, err, session.ErrRegistrationFailed)
	})
}

func TestRegistry_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newStore(t)
	registry := session.New(
		session.WithStore(store),
		session.WithHeartbeatInterval(10*time.Millisecond),
	)
	accountID := uuid.New()

	_, err := registry.Start(ctx, accountID, uuid.New(), "tab-1")
	require.NoError(t, err)
	_, err = registry.Start(ctx, accountID, uuid.New(), "tab-2")
	require.NoError(t, err)

	require.NoError(t, registry.Close())

	sessions, err := store.List(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, sessions, "close must remove every handle's session")

	_, err = registry.Start(ctx, accountID, uuid.New(), "tab-3")
	assert.ErrorIs(t, err, session.ErrRegistryClosed)

	assert.NoError(t, registry.Close(), "close is idempotent")
}

func TestRegistry_CloseDuringStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &gatedStore{
		MemoryStore: session.NewMemoryStore(0, 0),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	registry := session.New(
		session.WithStore(store),
		session.WithHeartbeatInterval(5*time.Millisecond),
	)
	accountID := uuid.New()

	errc := make(chan error, 1)
	go func() {
		_, err := registry.Start(ctx, accountID, uuid.New(), "tab-1")
		errc <- err
	}()

	// Close while the registration is still in flight at the store. The
	// late Start must not admit a heartbeat loop the shutdown hook can no
	// longer reach, nor leave its session registered.
	<-store.entered
	require.NoError(t, registry.Close())
	close(store.release)

	assert.ErrorIs(t, <-errc, session.ErrRegistryClosed)

	sessions, err := store.List(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, sessions, "session registered past close must be removed")
}

func TestRegistry_Heartbeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("evicted session completes without error", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(newStore(t)))
		assert.NoError(t, registry.Heartbeat(ctx, uuid.New(), "already-evicted"))
	})

	t.Run("best-effort failures propagate for logging only", func(t *testing.T) {
		t.Parallel()

		registry := session.New(session.WithStore(brokenStore{}))
		err := registry.Heartbeat(ctx, uuid.New(), "s1")
		assert.ErrorIs(t, err, session.ErrStoreUnavailable)
	})
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := session.New(session.WithStore(newStore(t)))
	accountID := uuid.New()
	require.NoError(t, registry.Register(ctx, accountID, uuid.New(), "s1"))

	require.NoError(t, registry.Remove(ctx, accountID, "s1"))
	assert.NoError(t, registry.Remove(ctx, accountID, "s1"), "second remove must be a no-op")
}

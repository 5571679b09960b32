package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the shared session table reachable by all application instances.
// No in-process component is the source of truth; every mutation goes
// through one of these operations and no caller ever reads-then-writes the
// table non-atomically.
type Store interface {
	// Register inserts the session, first evicting the account's session
	// with the oldest heartbeat if the account already holds maxSessions.
	// Eviction and insert execute as one atomic operation: concurrent
	// registrations for the same account must never leave more than
	// maxSessions behind. Re-registering an existing session ID refreshes
	// its heartbeat. Eviction order is oldest LastHeartbeatAt first, ties
	// broken by session ID ascending.
	Register(ctx context.Context, sess *Session, maxSessions int) error

	// Heartbeat refreshes the session's liveness. A heartbeat for a session
	// that no longer exists is a silent no-op, not an error: the session
	// may have been evicted by another device registering concurrently.
	Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error

	// Remove deletes the session. Idempotent: removing an absent session
	// is a no-op.
	Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error

	// List returns the account's sessions ordered by eviction priority
	// (oldest heartbeat first, then session ID).
	List(ctx context.Context, accountID uuid.UUID) ([]*Session, error)

	// DeleteStale removes every session whose last heartbeat is older than
	// the cutoff, returning the number reclaimed. This is the recovery path
	// for sessions whose Remove call never fired.
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

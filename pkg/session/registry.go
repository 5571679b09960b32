package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// removeTimeout bounds the best-effort removal issued when a handle stops.
const removeTimeout = 5 * time.Second

// Registry is the client-facing facade over the shared session store.
type Registry struct {
	store  Store
	config Config
	log    *slog.Logger

	mu      sync.Mutex
	handles map[*Handle]struct{}
	closed  bool
}

// New creates a Registry with the given options. Without WithStore it falls
// back to an in-memory store sized from the configuration.
func New(opts ...Option) *Registry {
	r := &Registry{
		config:  DefaultConfig(),
		log:     slog.Default(),
		handles: make(map[*Handle]struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	// A non-positive bound or interval from a misconfigured environment
	// must not reach the stores: they disagree on what it means (unbounded
	// for memory, evict-everything for Redis, delete-all for Postgres),
	// and a zero interval would panic the heartbeat ticker.
	defaults := DefaultConfig()
	if r.config.MaxSessions < 1 {
		r.config.MaxSessions = defaults.MaxSessions
	}
	if r.config.HeartbeatInterval <= 0 {
		r.config.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if r.config.StaleAfter <= 0 {
		r.config.StaleAfter = defaults.StaleAfter
	}

	if r.store == nil {
		r.store = NewMemoryStore(r.config.StaleAfter, r.config.ReapInterval)
	}

	return r
}

// NewFromConfig creates a Registry from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Registry {
	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

// Register records a new live session for the account. The concurrency
// bound is resolved internally by eviction, never by rejection: the only
// failure mode is a store/transport failure, reported as
// ErrRegistrationFailed.
func (r *Registry) Register(ctx context.Context, accountID, tenantID uuid.UUID, sessionID string) error {
	if sessionID == "" || accountID == uuid.Nil {
		return ErrInvalidSession
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:              sessionID,
		AccountID:       accountID,
		TenantID:        tenantID,
		CreatedAt:       now,
		LastHeartbeatAt: now,
	}

	if err := r.store.Register(ctx, sess, r.config.MaxSessions); err != nil {
		return errors.Join(ErrRegistrationFailed, err)
	}

	return nil
}

// Heartbeat refreshes the session's liveness. A heartbeat for a session
// that was already evicted succeeds silently.
func (r *Registry) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	return r.store.Heartbeat(ctx, accountID, sessionID, time.Now().UTC())
}

// Remove deletes the session. It is idempotent and may legitimately be
// called from several teardown paths for the same session.
func (r *Registry) Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	return r.store.Remove(ctx, accountID, sessionID)
}

// Sessions returns the account's currently registered sessions.
func (r *Registry) Sessions(ctx context.Context, accountID uuid.UUID) ([]*Session, error) {
	return r.store.List(ctx, accountID)
}

// Start registers the session and launches its heartbeat loop. The returned
// Handle owns the loop; call Stop at logout or teardown.
func (r *Registry) Start(ctx context.Context, accountID, tenantID uuid.UUID, sessionID string) (*Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	r.mu.Unlock()

	if err := r.Register(ctx, accountID, tenantID, sessionID); err != nil {
		return nil, err
	}

	h := &Handle{
		registry:  r,
		accountID: accountID,
		sessionID: sessionID,
		done:      make(chan struct{}),
	}

	// Close may have run between the registration above and this insert.
	// A handle admitted after that point would heartbeat forever with no
	// shutdown hook left to stop it, so undo the registration instead.
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		removeCtx, cancel := context.WithTimeout(context.Background(), removeTimeout)
		defer cancel()
		if err := r.Remove(removeCtx, accountID, sessionID); err != nil {
			r.log.WarnContext(removeCtx, "session removal failed",
				slog.String("account_id", accountID.String()),
				slog.String("session_id", sessionID),
				slog.Any("error", err),
			)
		}
		return nil, ErrRegistryClosed
	}
	r.handles[h] = struct{}{}
	r.mu.Unlock()

	go h.heartbeatLoop(r.config.HeartbeatInterval)

	return h, nil
}

// Close stops every live handle. Wire it into process shutdown so sessions
// are removed eagerly instead of waiting for the reaper.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handles := make([]*Handle, 0, len(r.handles))
	for h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	return nil
}

func (r *Registry) forget(h *Handle) {
	r.mu.Lock()
	delete(r.handles, h)
	r.mu.Unlock()
}

// Handle owns the heartbeat loop of one registered session.
type Handle struct {
	registry  *Registry
	accountID uuid.UUID
	sessionID string

	stopOnce sync.Once
	done     chan struct{}
}

// SessionID returns the opaque session identifier the handle manages.
func (h *Handle) SessionID() string {
	return h.sessionID
}

// Stop cancels the heartbeat loop and issues a best-effort removal.
// Idempotent: logout, navigation-away and shutdown may all call it.
// A heartbeat in flight at stop time is allowed to complete or fail
// silently.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.registry.forget(h)

		ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
		defer cancel()
		if err := h.registry.Remove(ctx, h.accountID, h.sessionID); err != nil {
			h.registry.log.WarnContext(ctx, "session removal failed",
				slog.String("account_id", h.accountID.String()),
				slog.String("session_id", h.sessionID),
				slog.Any("error", err),
			)
		}
	})
}

// heartbeatLoop refreshes the session on a fixed interval until stopped.
// Failures are logged and retried next interval; they never stop the loop
// or surface to the user.
func (h *Handle) heartbeatLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := h.registry.Heartbeat(ctx, h.accountID, h.sessionID)
			cancel()
			if err != nil {
				h.registry.log.Warn("session heartbeat failed, retrying next interval",
					slog.String("account_id", h.accountID.String()),
					slog.String("session_id", h.sessionID),
					slog.Any("error", err),
				)
			}
		case <-h.done:
			return
		}
	}
}

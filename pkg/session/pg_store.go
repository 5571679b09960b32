package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on PostgreSQL using the device_sessions table
// from the migrations directory. Register-or-evict runs inside a single
// transaction serialized per account by an advisory lock, so concurrent
// registrations from different application instances cannot exceed the
// bound.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed session store.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Register implements Store.
func (s *PGStore) Register(ctx context.Context, sess *Session, maxSessions int) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		// Serialize register-or-evict per account across all instances.
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
			sess.AccountID,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO device_sessions (account_id, tenant_id, session_id, created_at, last_heartbeat_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (account_id, session_id)
			DO UPDATE SET last_heartbeat_at = EXCLUDED.last_heartbeat_at`,
			sess.AccountID, sess.TenantID, sess.ID, sess.CreatedAt, sess.LastHeartbeatAt,
		); err != nil {
			return err
		}

		// Trim to the bound, keeping the most recently heartbeated rows.
		// The fresh insert always survives: it carries the newest heartbeat.
		_, err := tx.Exec(ctx, `
			DELETE FROM device_sessions
			 WHERE account_id = $1
			   AND session_id IN (
					SELECT session_id
					  FROM device_sessions
					 WHERE account_id = $1
					 ORDER BY last_heartbeat_at DESC, session_id DESC
					OFFSET $2
			   )`,
			sess.AccountID, maxSessions,
		)
		return err
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	return nil
}

// Heartbeat implements Store. Zero rows updated means the session is gone;
// that is a silent no-op by contract.
func (s *PGStore) Heartbeat(ctx context.Context, accountID uuid.UUID, sessionID string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE device_sessions
		   SET last_heartbeat_at = $3
		 WHERE account_id = $1 AND session_id = $2`,
		accountID, sessionID, at,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Remove implements Store.
func (s *PGStore) Remove(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM device_sessions
		 WHERE account_id = $1 AND session_id = $2`,
		accountID, sessionID,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// List implements Store.
func (s *PGStore) List(ctx context.Context, accountID uuid.UUID) ([]*Session, error) {
	rows, err := s.db.Query(ctx, `
		SELECT session_id, tenant_id, created_at, last_heartbeat_at
		  FROM device_sessions
		 WHERE account_id = $1
		 ORDER BY last_heartbeat_at ASC, session_id ASC`,
		accountID,
	)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{AccountID: accountID}
		if err := rows.Scan(&sess.ID, &sess.TenantID, &sess.CreatedAt, &sess.LastHeartbeatAt); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return sessions, nil
}

// DeleteStale implements Store.
func (s *PGStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM device_sessions
		 WHERE last_heartbeat_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

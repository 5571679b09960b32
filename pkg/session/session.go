package session

import (
	"time"

	"github.com/google/uuid"
)

// State describes the liveness of a registered session.
type State string

const (
	// StateActive means the last heartbeat is within the staleness threshold.
	StateActive State = "active"

	// StateStale means the heartbeat is overdue and the session is eligible
	// for reaping. Removed sessions have no state: they are simply absent.
	StateStale State = "stale"
)

// Session is one device's registration for an account. The ID is opaque and
// client-generated, stable for the lifetime of one browser tab or device.
type Session struct {
	ID              string    `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	CreatedAt       time.Time `json:"created_at"`
	LastHeartbeatAt time.Time `json:"last_heartbeat_at"`
}

// State derives the session's liveness from its last heartbeat.
func (s *Session) State(staleAfter time.Duration) State {
	if time.Since(s.LastHeartbeatAt) > staleAfter {
		return StateStale
	}
	return StateActive
}

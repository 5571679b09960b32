package entitlement

import (
	"context"

	"github.com/google/uuid"
)

// Flag names a feature that can be granted to a tenant.
type Flag string

// Source supplies raw entitlement answers from the system of record.
// Implementations must be idempotent and safe to call repeatedly; the
// Resolver layers caching and failure absorption on top.
type Source interface {
	// Resolve reports whether the tenant is entitled to the flag.
	Resolve(ctx context.Context, tenantID uuid.UUID, flag Flag) (bool, error)

	// ResolveAll returns the tenant's full entitlement set in one round
	// trip, for dashboard-style consumers.
	ResolveAll(ctx context.Context, tenantID uuid.UUID) (map[Flag]bool, error)
}

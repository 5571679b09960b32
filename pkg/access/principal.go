package access

import (
	"github.com/google/uuid"

	"github.com/dinehub/accesskit/pkg/role"
)

// Principal is the authenticated actor evaluated for access decisions.
// It is a request-scoped value object: constructed once per authenticated
// request or session and read-only thereafter.
type Principal struct {
	AccountID uuid.UUID
	TenantID  uuid.UUID
	Role      role.Role

	// SuperAdminOverride marks a privileged account temporarily acting on
	// behalf of another tenant. It does not change the role, only which
	// tenant is in scope.
	SuperAdminOverride bool
}

// Impersonate returns a copy of the principal scoped to another tenant with
// the override flag set. The original principal is not modified.
func (p Principal) Impersonate(tenantID uuid.UUID) Principal {
	p.TenantID = tenantID
	p.SuperAdminOverride = true
	return p
}

// State carries a principal together with its loading status, as supplied
// by the caller's data layer. While Loading is true, denial results are not
// authoritative.
type State struct {
	Principal *Principal
	Loading   bool
}

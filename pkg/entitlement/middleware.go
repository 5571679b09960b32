package entitlement

import (
	"net/http"

	"github.com/google/uuid"
)

// TenantIDExtractor retrieves the tenant in scope for the request.
// Returning false means no tenant could be determined and the request is
// denied (fail closed).
type TenantIDExtractor func(r *http.Request) (uuid.UUID, bool)

// RequireFeature guards an HTTP handler behind a feature entitlement.
// Requests for tenants without the feature receive 404 rather than 403 so
// unentitled tenants cannot probe for gated functionality.
func RequireFeature(resolver *Resolver, flag Flag, extractTenant TenantIDExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := extractTenant(r)
			if !ok || !resolver.HasFeature(r.Context(), tenantID, flag) {
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

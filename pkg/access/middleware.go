package access

import (
	"net/http"

	"github.com/dinehub/accesskit/pkg/role"
)

// middlewareConfig holds guard middleware settings.
type middlewareConfig struct {
	redirectURL string
}

// MiddlewareOption configures guard middleware behavior.
type MiddlewareOption func(*middlewareConfig)

// WithDeniedRedirect redirects denied requests instead of returning 403.
func WithDeniedRedirect(url string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.redirectURL = url
	}
}

// RequireRole guards an HTTP handler behind a minimum role requirement.
// The principal must already be present in the request context (placed
// there by the caller's authentication layer). Denial is a normal outcome:
// the request is redirected when configured, otherwise answered with 403.
func RequireRole(e *Evaluator, required []role.Role, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !e.CanAccessFromContext(r.Context(), required...) {
				if cfg.redirectURL != "" {
					http.Redirect(w, r, cfg.redirectURL, http.StatusSeeOther)
					return
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

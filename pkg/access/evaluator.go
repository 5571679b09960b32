package access

import (
	"context"
	"log/slog"

	"github.com/dinehub/accesskit/pkg/role"
)

// Evaluator decides role-based access questions. The zero value is not
// usable; construct with NewEvaluator.
type Evaluator struct {
	log *slog.Logger
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for invariant violations such as
// unrecognized role values.
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEvaluator creates an Evaluator. Without options it logs through the
// process default slog logger.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Decision is the outcome of evaluating a State.
type Decision struct {
	// Granted reports whether the principal satisfies the requirement.
	Granted bool

	// Authoritative is false while the principal's role is still loading.
	// A non-authoritative denial must not trigger redirects or hide UI
	// permanently; callers should wait for an authoritative answer.
	Authoritative bool
}

// CanAccess reports whether the principal meets the minimum required role.
// It returns false, never an error, for a nil principal or a role value
// outside the hierarchy.
func (e *Evaluator) CanAccess(p *Principal, required ...role.Role) bool {
	if p == nil {
		return false
	}

	if !p.Role.Valid() {
		// Malformed principal data is denial, not a crash.
		e.log.Warn("access check denied: unrecognized role",
			slog.String("role", p.Role.String()),
			slog.String("account_id", p.AccountID.String()),
			slog.String("tenant_id", p.TenantID.String()),
		)
		return false
	}

	return role.Satisfies(p.Role, required...)
}

// Decide evaluates a State, marking the decision non-authoritative while
// the principal is still loading.
func (e *Evaluator) Decide(s State, required ...role.Role) Decision {
	return Decision{
		Granted:       e.CanAccess(s.Principal, required...),
		Authoritative: !s.Loading,
	}
}

// CanAccessFromContext checks the principal stored in the context against
// the required roles. A missing principal is denial.
func (e *Evaluator) CanAccessFromContext(ctx context.Context, required ...role.Role) bool {
	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		return false
	}
	return e.CanAccess(&p, required...)
}

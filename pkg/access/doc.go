// Package access evaluates whether an authenticated principal may perform
// an operation that requires a minimum operational role.
//
// The evaluator is synchronous, pure and total: it returns a boolean and
// never panics or returns an error. A nil principal or an unrecognized role
// value is treated as denial (fail closed), with unrecognized roles logged
// at warning level for operator visibility.
//
// Callers whose principal data loads asynchronously should use Decide with
// a State rather than CanAccess directly: a Decision with Authoritative set
// to false means the role has not finished loading and a Granted=false
// result must not yet be used for redirects or other denial side effects.
//
//	decision := evaluator.Decide(access.State{Principal: p, Loading: loading}, role.Manager)
//	if decision.Authoritative && !decision.Granted {
//	    // safe to redirect away
//	}
package access

// Package role defines the fixed, totally ordered set of operational roles
// used for tenant-scoped authorization decisions.
//
// The hierarchy is strict: waiter < manager < restaurant_admin < super_admin.
// A higher-ranked role inherits every capability of the roles below it, so
// callers express requirements as the minimum acceptable role rather than an
// exact match:
//
//	if role.Satisfies(actual, role.Manager) {
//	    // managers and above
//	}
//
// The package is pure and allocation-free on the hot path. Unknown role
// strings are rejected at the Parse boundary; everywhere else an invalid
// Role simply never satisfies a requirement.
package role

// Package entitlement resolves whether a tenant's subscription entitles it
// to a named feature.
//
// Resolution combines the tenant's plan with manual per-tenant overrides:
// an override always wins and can both grant and revoke relative to plan
// defaults. The result is a pure function of (plan, overrides) at a point
// in time, so the Resolver caches it indefinitely per (tenant, flag) pair
// and invalidates only on explicit administrative action, never by timer.
//
// Entitlement checks sit on hot UI paths while the capability source is a
// remote call, so the Resolver deduplicates concurrent lookups for the same
// key with singleflight: a single-flag check and a batch check converge on
// the same cached value instead of issuing duplicate inflight queries.
//
// Failure semantics are strictly fail-closed. If the source is unreachable
// or not yet provisioned for a tenant, HasFeature returns false and logs a
// warning; it never returns true under uncertainty and never propagates an
// error into the caller.
//
//	resolver := entitlement.NewResolver(source)
//	if resolver.HasFeature(ctx, tenantID, "advanced_reports") {
//	    // render the reports tab
//	}
//
// Three Source implementations ship with the package: an in-memory
// PlanSource (plans, assignments and overrides behind a mutex), a YAML plan
// catalog loader feeding it, and a PostgreSQL-backed source.
package entitlement

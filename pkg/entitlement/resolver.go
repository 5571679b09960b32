package entitlement

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Resolver answers entitlement checks through an indefinitely cached view
// of a Source. Cached values change only through Invalidate or
// InvalidateTenant; the cache is instance-local and may be dropped at any
// time without correctness impact.
type Resolver struct {
	source Source
	log    *slog.Logger
	group  singleflight.Group

	mu    sync.RWMutex
	cache map[uuid.UUID]map[Flag]bool
	// complete marks tenants whose full entitlement set is cached, so
	// batch reads are served locally until an explicit invalidation.
	complete map[uuid.UUID]bool
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for fail-closed warnings.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a Resolver backed by the given source.
func NewResolver(source Source, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:   source,
		log:      slog.Default(),
		cache:    make(map[uuid.UUID]map[Flag]bool),
		complete: make(map[uuid.UUID]bool),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HasFeature reports whether the tenant is entitled to the flag. The first
// call per (tenant, flag) resolves through the source; concurrent callers
// for the same key share one inflight resolution. On any source failure the
// answer is false, never true and never an error.
func (r *Resolver) HasFeature(ctx context.Context, tenantID uuid.UUID, flag Flag) bool {
	if granted, ok := r.cached(tenantID, flag); ok {
		return granted
	}

	key := tenantID.String() + "/" + string(flag)
	v, err, _ := r.group.Do(key, func() (any, error) {
		// A batch resolution may have filled the cache while we waited.
		if granted, ok := r.cached(tenantID, flag); ok {
			return granted, nil
		}

		granted, err := r.source.Resolve(ctx, tenantID, flag)
		if err != nil {
			return false, err
		}

		r.store(tenantID, flag, granted)
		return granted, nil
	})
	if err != nil {
		// Fail closed; the next call retries because failures are not cached.
		r.log.WarnContext(ctx, "entitlement resolution failed, denying",
			slog.String("tenant_id", tenantID.String()),
			slog.String("flag", string(flag)),
			slog.Any("error", err),
		)
		return false
	}

	return v.(bool)
}

// TenantFeatures resolves the tenant's full entitlement set in one round
// trip and seeds the per-flag cache, so subsequent HasFeature calls are
// served locally. The set itself is cached like single-flag answers:
// repeated batch calls do not reach the source again until Invalidate or
// InvalidateTenant. On failure it returns an empty set (fail closed).
func (r *Resolver) TenantFeatures(ctx context.Context, tenantID uuid.UUID) map[Flag]bool {
	if snapshot, ok := r.completeSnapshot(tenantID); ok {
		return snapshot
	}

	key := tenantID.String() + "/*"
	_, err, _ := r.group.Do(key, func() (any, error) {
		// Another batch call may have completed while we waited.
		if _, ok := r.completeSnapshot(tenantID); ok {
			return nil, nil
		}

		flags, err := r.source.ResolveAll(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		r.storeAll(tenantID, flags)
		return nil, nil
	})
	if err != nil {
		r.log.WarnContext(ctx, "entitlement batch resolution failed, denying all",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err),
		)
		return map[Flag]bool{}
	}

	// Snapshot the cache so single-flag and batch callers observe the same
	// values regardless of which resolution landed first.
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[Flag]bool, len(r.cache[tenantID]))
	maps.Copy(snapshot, r.cache[tenantID])
	return snapshot
}

// Invalidate evicts cached values after an administrative change (plan
// switch, override edit). With no flags given the whole tenant is evicted.
func (r *Resolver) Invalidate(tenantID uuid.UUID, flags ...Flag) {
	if len(flags) == 0 {
		r.InvalidateTenant(tenantID)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The cached full set is no longer complete once any flag is evicted.
	delete(r.complete, tenantID)

	tenantCache, ok := r.cache[tenantID]
	if !ok {
		return
	}
	for _, flag := range flags {
		delete(tenantCache, flag)
	}
	if len(tenantCache) == 0 {
		delete(r.cache, tenantID)
	}
}

// InvalidateTenant evicts every cached flag for the tenant.
func (r *Resolver) InvalidateTenant(tenantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cache, tenantID)
	delete(r.complete, tenantID)
}

func (r *Resolver) cached(tenantID uuid.UUID, flag Flag) (granted, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	granted, ok = r.cache[tenantID][flag]
	return granted, ok
}

func (r *Resolver) store(tenantID uuid.UUID, flag Flag, granted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache[tenantID] == nil {
		r.cache[tenantID] = make(map[Flag]bool)
	}
	r.cache[tenantID][flag] = granted
}

func (r *Resolver) storeAll(tenantID uuid.UUID, flags map[Flag]bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache[tenantID] == nil {
		r.cache[tenantID] = make(map[Flag]bool, len(flags))
	}
	maps.Copy(r.cache[tenantID], flags)
	r.complete[tenantID] = true
}

// completeSnapshot returns a copy of the tenant's cache when the full set
// has been resolved and not invalidated since.
func (r *Resolver) completeSnapshot(tenantID uuid.UUID) (map[Flag]bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.complete[tenantID] {
		return nil, false
	}

	snapshot := make(map[Flag]bool, len(r.cache[tenantID]))
	maps.Copy(snapshot, r.cache[tenantID])
	return snapshot, true
}

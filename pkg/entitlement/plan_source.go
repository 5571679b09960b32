package entitlement

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// PlanSource is an in-memory Source combining a plan catalog, tenant plan
// assignments and manual per-tenant overrides. It is the system of record
// for tests and single-instance deployments; multi-instance deployments
// should use PGSource.
//
// Overrides always take precedence over plan defaults and can both grant a
// feature the plan lacks and revoke one it includes.
type PlanSource struct {
	mu        sync.RWMutex
	plans     map[string]map[Flag]bool
	tenants   map[uuid.UUID]string
	overrides map[uuid.UUID]map[Flag]bool
}

// NewPlanSource creates an empty PlanSource.
func NewPlanSource() *PlanSource {
	return &PlanSource{
		plans:     make(map[string]map[Flag]bool),
		tenants:   make(map[uuid.UUID]string),
		overrides: make(map[uuid.UUID]map[Flag]bool),
	}
}

// DefinePlan registers a plan and the flags it grants, replacing any
// previous definition of the same plan.
func (s *PlanSource) DefinePlan(planID string, flags ...Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	granted := make(map[Flag]bool, len(flags))
	for _, flag := range flags {
		granted[flag] = true
	}
	s.plans[planID] = granted
}

// AssignPlan puts the tenant on the given plan.
// Returns ErrUnknownPlan if the plan has not been defined.
func (s *PlanSource) AssignPlan(tenantID uuid.UUID, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}
	s.tenants[tenantID] = planID
	return nil
}

// SetOverride grants or revokes a flag for one tenant regardless of plan.
func (s *PlanSource) SetOverride(tenantID uuid.UUID, flag Flag, granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overrides[tenantID] == nil {
		s.overrides[tenantID] = make(map[Flag]bool)
	}
	s.overrides[tenantID][flag] = granted
}

// ClearOverride removes a manual override, reverting the flag to its plan
// default. Clearing a nonexistent override is a no-op.
func (s *PlanSource) ClearOverride(tenantID uuid.UUID, flag Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if overrides, ok := s.overrides[tenantID]; ok {
		delete(overrides, flag)
		if len(overrides) == 0 {
			delete(s.overrides, tenantID)
		}
	}
}

// Resolve implements Source. An override wins over the plan; a tenant
// without a plan assignment is not provisioned yet and resolves with an
// error so callers fail closed.
func (s *PlanSource) Resolve(ctx context.Context, tenantID uuid.UUID, flag Flag) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if granted, ok := s.overrides[tenantID][flag]; ok {
		return granted, nil
	}

	planID, ok := s.tenants[tenantID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTenantNotProvisioned, tenantID)
	}

	return s.plans[planID][flag], nil
}

// ResolveAll implements Source. The result covers every flag the plan
// grants plus every flag touched by an override.
func (s *PlanSource) ResolveAll(ctx context.Context, tenantID uuid.UUID) (map[Flag]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	planID, ok := s.tenants[tenantID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTenantNotProvisioned, tenantID)
	}

	result := make(map[Flag]bool, len(s.plans[planID])+len(s.overrides[tenantID]))
	maps.Copy(result, s.plans[planID])
	maps.Copy(result, s.overrides[tenantID])
	return result, nil
}

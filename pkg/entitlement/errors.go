package entitlement

import "errors"

var (
	// ErrSourceUnavailable indicates the capability source could not be reached.
	ErrSourceUnavailable = errors.New("entitlement.source_unavailable")

	// ErrTenantNotProvisioned indicates the tenant has no plan assignment yet.
	ErrTenantNotProvisioned = errors.New("entitlement.tenant_not_provisioned")

	// ErrUnknownPlan indicates a plan ID outside the catalog.
	ErrUnknownPlan = errors.New("entitlement.unknown_plan")

	// ErrInvalidCatalog indicates a malformed plan catalog document.
	ErrInvalidCatalog = errors.New("entitlement.invalid_catalog")
)

package entitlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSource resolves entitlements from PostgreSQL. It expects the schema
// shipped in the migrations directory: tenants(id, plan_id),
// plan_features(plan_id, feature) and feature_overrides(tenant_id, feature,
// granted).
type PGSource struct {
	db *pgxpool.Pool
}

// NewPGSource creates a PostgreSQL-backed Source.
func NewPGSource(db *pgxpool.Pool) *PGSource {
	return &PGSource{db: db}
}

// Resolve implements Source. The override row wins when present; otherwise
// the answer is whether the tenant's plan grants the feature.
func (s *PGSource) Resolve(ctx context.Context, tenantID uuid.UUID, flag Flag) (bool, error) {
	const query = `
		SELECT COALESCE(
			(SELECT o.granted
			   FROM feature_overrides o
			  WHERE o.tenant_id = $1 AND o.feature = $2),
			EXISTS (
				SELECT 1
				  FROM plan_features pf
				  JOIN tenants t ON t.plan_id = pf.plan_id
				 WHERE t.id = $1 AND pf.feature = $2
			)
		)`

	var granted bool
	if err := s.db.QueryRow(ctx, query, tenantID, string(flag)).Scan(&granted); err != nil {
		return false, errors.Join(ErrSourceUnavailable, err)
	}
	return granted, nil
}

// ResolveAll implements Source. Plan grants are read first, then overlaid
// with overrides so revocations surface as explicit false entries.
func (s *PGSource) ResolveAll(ctx context.Context, tenantID uuid.UUID) (map[Flag]bool, error) {
	var planID string
	err := s.db.QueryRow(ctx, `SELECT plan_id FROM tenants WHERE id = $1`, tenantID).Scan(&planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Join(ErrTenantNotProvisioned, err)
		}
		return nil, errors.Join(ErrSourceUnavailable, err)
	}

	const query = `
		SELECT feature, granted FROM (
			SELECT pf.feature, true AS granted, 0 AS precedence
			  FROM plan_features pf
			 WHERE pf.plan_id = $2
			 UNION ALL
			SELECT o.feature, o.granted, 1
			  FROM feature_overrides o
			 WHERE o.tenant_id = $1
		) resolved
		ORDER BY precedence`

	rows, err := s.db.Query(ctx, query, tenantID, planID)
	if err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}
	defer rows.Close()

	result := make(map[Flag]bool)
	for rows.Next() {
		var feature string
		var granted bool
		if err := rows.Scan(&feature, &granted); err != nil {
			return nil, errors.Join(ErrSourceUnavailable, err)
		}
		// Later (override) rows overwrite plan rows.
		result[Flag(feature)] = granted
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}

	return result, nil
}

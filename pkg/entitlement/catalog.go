package entitlement

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is a declarative plan catalog, typically checked into the
// operator's configuration repository:
//
//	plans:
//	  core:
//	    features: [online_menu, table_qr]
//	  premium:
//	    features: [online_menu, table_qr, advanced_reports]
type Catalog struct {
	Plans map[string]CatalogPlan `yaml:"plans"`
}

// CatalogPlan lists the flags a plan grants.
type CatalogPlan struct {
	Features []Flag `yaml:"features"`
}

// LoadCatalog parses a plan catalog document.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	if len(catalog.Plans) == 0 {
		return nil, errors.Join(ErrInvalidCatalog, errors.New("catalog defines no plans"))
	}

	return &catalog, nil
}

// LoadCatalogFile parses a plan catalog from a YAML file.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan catalog: %w", err)
	}
	defer f.Close()

	return LoadCatalog(f)
}

// NewPlanSourceFromCatalog builds a PlanSource preloaded with the
// catalog's plans. Tenant assignments and overrides start empty.
func NewPlanSourceFromCatalog(catalog *Catalog) *PlanSource {
	source := NewPlanSource()
	for planID, plan := range catalog.Plans {
		source.DefinePlan(planID, plan.Features...)
	}
	return source
}

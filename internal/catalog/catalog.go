// Package catalog provides the insurance plan catalog that recommendations are ranked from.
// A default catalog is embedded at compile time; alternative catalogs can be loaded from disk.
package catalog

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

//go:embed plans.json
var defaultPlans []byte

// Default returns a fresh copy of the embedded catalog.
func Default() []types.InsurancePlan {
	plans, err := Parse(defaultPlans)
	if err != nil {
		panic(eris.Wrap(err, "embedded catalog is invalid"))
	}
	return plans
}

// Load reads and validates a catalog from a JSON file containing an array of plans.
func Load(path string) ([]types.InsurancePlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read catalog file %s", path)
	}
	plans, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid catalog file %s", path)
	}
	return plans, nil
}

// Parse decodes and validates a JSON catalog.
func Parse(data []byte) ([]types.InsurancePlan, error) {
	var plans []types.InsurancePlan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, eris.Wrap(err, "failed to parse catalog")
	}
	if err := Validate(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Validate checks that every plan has a unique non-empty ID, a type and a positive base price.
func Validate(plans []types.InsurancePlan) error {
	seen := make(map[string]struct{}, len(plans))
	for i, p := range plans {
		if p.ID == "" {
			return eris.Errorf("plan %d: id is required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return eris.Errorf("plan %q: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Type == "" {
			return eris.Errorf("plan %q: type is required", p.ID)
		}
		if p.BasePrice <= 0 {
			return eris.Errorf("plan %q: base_price must be positive, got %v", p.ID, p.BasePrice)
		}
	}
	return nil
}

// Types returns the distinct plan types in first-seen order.
func Types(plans []types.InsurancePlan) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range plans {
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		out = append(out, p.Type)
	}
	return out
}

// ByID finds a plan by ID.
func ByID(plans []types.InsurancePlan, id string) (types.InsurancePlan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return types.InsurancePlan{}, false
}

// FilterByType returns the plans whose type equals planType. An empty planType returns all plans.
func FilterByType(plans []types.InsurancePlan, planType string) []types.InsurancePlan {
	if planType == "" {
		return plans
	}
	out := make([]types.InsurancePlan, 0, len(plans))
	for _, p := range plans {
		if p.Type == planType {
			out = append(out, p)
		}
	}
	return out
}

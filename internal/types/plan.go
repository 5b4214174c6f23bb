package types

// Plan categories used by the default catalog and the ranking rules.
const (
	PlanTypeHealth          = "Health"
	PlanTypeLife            = "Life"
	PlanTypeSports          = "Sports"
	PlanTypeTravel          = "Travel"
	PlanTypeAuto            = "Auto"
	PlanTypeHome            = "Home"
	PlanTypeCriticalIllness = "Critical Illness"
)

// InsurancePlan is a read-only catalog entry.
type InsurancePlan struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Name      string   `json:"name,omitempty"`
	Provider  string   `json:"provider,omitempty"`
	BasePrice float64  `json:"base_price"`
	Coverage  string   `json:"coverage,omitempty"`
	Features  []string `json:"features"`
}

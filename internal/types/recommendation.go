package types

// NarrativeSource records which path produced the narrative fields of a bundle.
type NarrativeSource string

// NarrativeSource values.
const (
	NarrativeDeterministic NarrativeSource = "deterministic"
	NarrativeGenerative    NarrativeSource = "generative"
)

// RecommendationResult is the score of one catalog plan against one profile.
type RecommendationResult struct {
	PlanID          string  `json:"plan_id"`
	PlanType        string  `json:"plan_type"`
	MatchScore      int     `json:"match_score"`
	Reasoning       string  `json:"reasoning"`
	PriceAdjustment int     `json:"price_adjustment"` // signed percent applied to BasePrice
	BasePrice       float64 `json:"base_price"`
	AdjustedPrice   float64 `json:"adjusted_price"`
}

// RecommendationBundle is the full output of a ranking call.
type RecommendationBundle struct {
	RiskValue          int                    `json:"risk_value"`
	TopRecommendations []RecommendationResult `json:"top_recommendations"`
	OverallAnalysis    string                 `json:"overall_analysis"`
	RiskFactors        []string               `json:"risk_factors"`
	SavingsTips        []string               `json:"savings_tips"`
	NarrativeSource    NarrativeSource        `json:"narrative_source"`
}

// Clone returns a deep copy so callers can swap narrative fields without touching a cached bundle.
func (b *RecommendationBundle) Clone() *RecommendationBundle {
	if b == nil {
		return nil
	}
	out := *b
	out.TopRecommendations = append([]RecommendationResult(nil), b.TopRecommendations...)
	out.RiskFactors = append([]string(nil), b.RiskFactors...)
	out.SavingsTips = append([]string(nil), b.SavingsTips...)
	if out.TopRecommendations == nil {
		out.TopRecommendations = []RecommendationResult{}
	}
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}
	if out.SavingsTips == nil {
		out.SavingsTips = []string{}
	}
	return &out
}

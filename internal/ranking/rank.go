package ranking

import (
	"sort"

	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// MaxRecommendations caps the number of plans returned in a bundle.
const MaxRecommendations = 4

// Recommend computes the risk value for a profile and ranks the catalog against it.
func Recommend(profile *types.UserProfile, catalog []types.InsurancePlan) *types.RecommendationBundle {
	return Rank(profile, risk.ComputeRisk(profile), catalog)
}

// Rank scores every catalog plan whose type the user selected, sorts by match score
// (descending, catalog order kept among ties), keeps the top MaxRecommendations and
// attaches the narrative for the profile. Rank is pure: identical inputs give identical output.
func Rank(profile *types.UserProfile, riskValue int, catalog []types.InsurancePlan) *types.RecommendationBundle {
	if profile == nil {
		profile = &types.UserProfile{}
	}

	adjustment := priceAdjustment(riskValue)

	scored := make([]types.RecommendationResult, 0, len(catalog))
	for i := range catalog {
		plan := &catalog[i]
		if !profile.WantsType(plan.Type) {
			continue
		}

		matchScore := computeMatchScore(profile, plan)
		scored = append(scored, types.RecommendationResult{
			PlanID:          plan.ID,
			PlanType:        plan.Type,
			MatchScore:      matchScore,
			Reasoning:       buildReasoning(matchScore, profile, plan),
			PriceAdjustment: adjustment,
			BasePrice:       plan.BasePrice,
			AdjustedPrice:   adjustedPrice(plan.BasePrice, adjustment),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if len(scored) > MaxRecommendations {
		scored = scored[:MaxRecommendations]
	}

	return &types.RecommendationBundle{
		RiskValue:          riskValue,
		TopRecommendations: scored,
		OverallAnalysis:    OverallAnalysis(riskValue),
		RiskFactors:        RiskFactors(profile),
		SavingsTips:        SavingsTips(profile, riskValue),
		NarrativeSource:    types.NarrativeDeterministic,
	}
}

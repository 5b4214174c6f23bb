// Package ranking scores catalog plans against a user profile and packages the top matches.
package ranking

import (
	"math"
	"strings"

	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Scoring constants. These are presentation heuristics with no actuarial
// meaning.
const (
	baseMatchScore = 70
	maxMatchScore  = 99
	minMatchScore  = 0

	lowRiskDiscountPct    = -10
	highRiskSurchargePct  = 8
	affordableRatio       = 2.0
	unaffordableRatio     = 0.8
	budgetShareForComfort = 0.3
)

// planRule adds points to a plan's match score when its predicate holds.
// Every rule is evaluated independently; several may apply to one plan.
type planRule struct {
	name    string
	points  int
	applies func(p *types.UserProfile, plan *types.InsurancePlan) bool
}

func isType(plan *types.InsurancePlan, planType string) bool {
	return plan.Type == planType
}

// affordability is budget / basePrice. ok is false when the price is not positive.
func affordability(p *types.UserProfile, plan *types.InsurancePlan) (ratio float64, ok bool) {
	if plan.BasePrice <= 0 {
		return 0, false
	}
	return p.Budget / plan.BasePrice, true
}

var matchRules = []planRule{
	{name: "young_health", points: 10, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age < 35 && isType(plan, types.PlanTypeHealth)
	}},
	{name: "young_sports", points: 8, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age < 35 && isType(plan, types.PlanTypeSports)
	}},
	{name: "senior_life", points: 12, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age > 50 && isType(plan, types.PlanTypeLife)
	}},
	{name: "active_sports", points: 15, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Lifestyle == types.LifestyleActive && isType(plan, types.PlanTypeSports)
	}},
	{name: "active_travel", points: 10, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Lifestyle == types.LifestyleActive && isType(plan, types.PlanTypeTravel)
	}},
	{name: "sedentary_health", points: 8, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Lifestyle == types.LifestyleSedentary && isType(plan, types.PlanTypeHealth)
	}},
	{name: "exercise_often", points: 10, applies: func(p *types.UserProfile, _ *types.InsurancePlan) bool {
		return p.ExerciseFrequency == types.ExerciseOften
	}},
	{name: "exercise_rarely", points: 3, applies: func(p *types.UserProfile, _ *types.InsurancePlan) bool {
		return p.ExerciseFrequency == types.ExerciseRarely
	}},
	{name: "non_smoker", points: 12, applies: func(p *types.UserProfile, _ *types.InsurancePlan) bool {
		return p.SmokingStatus == types.SmokingNo
	}},
	{name: "smoker", points: -8, applies: func(p *types.UserProfile, _ *types.InsurancePlan) bool {
		return p.SmokingStatus != types.SmokingNo
	}},
	{name: "comfortably_affordable", points: 5, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		ratio, ok := affordability(p, plan)
		return ok && ratio > affordableRatio
	}},
	{name: "over_budget", points: -10, applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		ratio, ok := affordability(p, plan)
		return ok && ratio < unaffordableRatio
	}},
}

// computeMatchScore applies every matching rule to the base score and clamps to [0, 99].
func computeMatchScore(p *types.UserProfile, plan *types.InsurancePlan) int {
	score := baseMatchScore
	for _, rule := range matchRules {
		if rule.applies(p, plan) {
			score += rule.points
		}
	}
	return max(minMatchScore, min(score, maxMatchScore))
}

// priceAdjustment maps the risk value to a signed percentage delta on the base price.
func priceAdjustment(riskValue int) int {
	switch {
	case riskValue < risk.LowThreshold:
		return lowRiskDiscountPct
	case riskValue > risk.ElevatedThreshold:
		return highRiskSurchargePct
	default:
		return 0
	}
}

// adjustedPrice applies a percentage delta and rounds to cents.
func adjustedPrice(basePrice float64, adjustmentPct int) float64 {
	return math.Round(basePrice*float64(100+adjustmentPct)) / 100
}

// scoreCategories is first-match: the first entry whose threshold is exceeded wins.
var scoreCategories = []struct {
	above int
	label string
}{
	{above: 85, label: "Excellent match"},
	{above: 75, label: "Strong fit"},
	{above: math.MinInt, label: "Good coverage option"},
}

// reasonFragment is appended to the reasoning when its predicate holds.
type reasonFragment struct {
	text    string
	applies func(p *types.UserProfile, plan *types.InsurancePlan) bool
}

// reasonFragments is all-match, evaluated in this order.
var reasonFragments = []reasonFragment{
	{text: "ideal health coverage for your age", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age < 35 && isType(plan, types.PlanTypeHealth)
	}},
	{text: "great sports protection for young adults", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age < 35 && isType(plan, types.PlanTypeSports)
	}},
	{text: "important life protection at your stage", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Age > 50 && isType(plan, types.PlanTypeLife)
	}},
	{text: "built for your active lifestyle", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Lifestyle == types.LifestyleActive && (isType(plan, types.PlanTypeSports) || isType(plan, types.PlanTypeTravel))
	}},
	{text: "supports a healthier routine", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return p.Lifestyle == types.LifestyleSedentary && isType(plan, types.PlanTypeHealth)
	}},
	{text: "non-smoker rates apply", applies: func(p *types.UserProfile, _ *types.InsurancePlan) bool {
		return p.SmokingStatus == types.SmokingNo
	}},
	{text: "well within your budget", applies: func(p *types.UserProfile, plan *types.InsurancePlan) bool {
		return plan.BasePrice < p.Budget*budgetShareForComfort
	}},
}

// buildReasoning joins the category line and every applicable fragment with commas.
func buildReasoning(matchScore int, p *types.UserProfile, plan *types.InsurancePlan) string {
	parts := make([]string, 0, 1+len(reasonFragments))
	for _, c := range scoreCategories {
		if matchScore > c.above {
			parts = append(parts, c.label)
			break
		}
	}
	for _, f := range reasonFragments {
		if f.applies(p, plan) {
			parts = append(parts, f.text)
		}
	}
	return strings.Join(parts, ", ")
}

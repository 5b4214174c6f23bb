package ranking

import (
	"fmt"
	"strings"

	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// bundleDiscountMinTypes is how many selected plan types qualify for a multi-policy tip.
const bundleDiscountMinTypes = 3

// profileLine renders a line of narrative when its predicate holds.
type profileLine struct {
	applies func(p *types.UserProfile, riskValue int) bool
	render  func(p *types.UserProfile, riskValue int) string
}

func fixed(s string) func(*types.UserProfile, int) string {
	return func(*types.UserProfile, int) string { return s }
}

// collect evaluates every line in order and returns the rendered text of those that apply.
func collect(lines []profileLine, p *types.UserProfile, riskValue int) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.applies(p, riskValue) {
			out = append(out, l.render(p, riskValue))
		}
	}
	return out
}

var analysisByTier = map[risk.Tier]string{
	risk.TierLow: "Your overall risk profile is low (%d/100). You qualify for our best rates, " +
		"and preventive coverage will help you keep it that way.",
	risk.TierModerate: "Your overall risk profile is moderate (%d/100). A balanced mix of health " +
		"and protection coverage is recommended, with room to lower your premiums over time.",
	risk.TierElevated: "Your overall risk profile is elevated (%d/100). Comprehensive health and life " +
		"coverage is strongly recommended to protect you and your family.",
}

// OverallAnalysis returns the summary paragraph for a risk value.
func OverallAnalysis(riskValue int) string {
	return fmt.Sprintf(analysisByTier[risk.TierOf(riskValue)], riskValue)
}

var riskFactorLines = []profileLine{
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.Age > 50 },
		render:  fixed("Age over 50 increases health and life insurance risk"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.IsSmoker() },
		render:  fixed("Smoking significantly raises health and life insurance risk"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.Lifestyle == types.LifestyleSedentary },
		render:  fixed("A sedentary lifestyle increases cardiovascular risk"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool {
			return p.ExerciseFrequency == types.ExerciseRarely || p.ExerciseFrequency == types.ExerciseNever
		},
		render: fixed("Infrequent exercise lowers overall fitness"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return len(p.DNARisks) > 0 },
		render: func(p *types.UserProfile, _ int) string {
			return "Genetic predispositions: " + strings.Join(p.DNARisks, ", ")
		},
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return len(p.FamilyHistory) > 0 },
		render: func(p *types.UserProfile, _ int) string {
			return "Family history of " + strings.Join(p.FamilyHistory, ", ")
		},
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.HasUninsuredVehicle() },
		render:  fixed("Your vehicle is currently uninsured"),
	},
}

// RiskFactors lists each risk contributor present in the profile.
func RiskFactors(p *types.UserProfile) []string {
	return collect(riskFactorLines, p, 0)
}

var savingsTipLines = []profileLine{
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.IsSmoker() },
		render:  fixed("Quitting smoking could lower your premiums by up to 30% after 12 months smoke-free"),
	},
	{
		applies: func(_ *types.UserProfile, riskValue int) bool { return risk.TierOf(riskValue) == risk.TierLow },
		render:  fixed("Your low risk score qualifies you for preferred rates; lock them in with a longer policy term"),
	},
	{
		applies: func(_ *types.UserProfile, riskValue int) bool { return risk.TierOf(riskValue) == risk.TierElevated },
		render:  fixed("A higher deductible can offset the risk surcharge on your monthly premium"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.Lifestyle == types.LifestyleActive },
		render:  fixed("Ask about active-lifestyle discounts on health and sports plans"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.ExerciseFrequency == types.ExerciseOften },
		render:  fixed("Sync your fitness tracker to earn wellness rewards"),
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return distinctTypes(p.SelectedTypes) >= bundleDiscountMinTypes },
		render: func(p *types.UserProfile, _ int) string {
			return fmt.Sprintf("Bundle your %d policies for a multi-policy discount of up to 15%%", distinctTypes(p.SelectedTypes))
		},
	},
	{
		applies: func(p *types.UserProfile, _ int) bool { return p.TravelsOften() },
		render:  fixed("An annual multi-trip travel plan costs less than insuring each trip"),
	},
}

func distinctTypes(selected []string) int {
	seen := make(map[string]struct{}, len(selected))
	for _, t := range selected {
		seen[t] = struct{}{}
	}
	return len(seen)
}

// genericTips are always appended after the profile-specific tips.
var genericTips = []string{
	"Pay annually instead of monthly to save around 5%",
	"Review your coverage every year as your needs change",
}

// SavingsTips lists the tips that apply to the profile, followed by the generic tips.
func SavingsTips(p *types.UserProfile, riskValue int) []string {
	return append(collect(savingsTipLines, p, riskValue), genericTips...)
}

// Package risk reduces a user profile to a single 0-100 risk value.
package risk

import (
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// MaxValue is the ceiling of the risk scale.
const MaxValue = 100

// Point values per factor. These are presentation heuristics, not actuarial weights.
const (
	ageUnder30Points    = 20
	ageUnder45Points    = 35
	ageUnder60Points    = 55
	ageSixtyPlusPoints  = 70
	sedentaryPoints     = 20
	moderatePoints      = 10
	activePoints        = 5
	lowExercisePoints   = 15
	smokerPoints        = 25
	dnaRiskPoints       = 5
	familyHistoryPoints = 8
)

// Tier buckets a risk value for pricing and narrative selection.
type Tier string

// Tier values.
const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierElevated Tier = "elevated"
)

// Tier boundaries. Values below LowThreshold are low, values above
// ElevatedThreshold are elevated, everything between is moderate.
const (
	LowThreshold      = 40
	ElevatedThreshold = 65
)

// ComputeRisk returns the aggregate risk value for a profile, in [0, 100].
// Unknown enum values and missing optional fields contribute no points.
func ComputeRisk(profile *types.UserProfile) int {
	if profile == nil {
		return 0
	}

	score := agePoints(profile.Age) +
		lifestylePoints(profile.Lifestyle) +
		exercisePoints(profile.ExerciseFrequency)

	if profile.IsSmoker() {
		score += smokerPoints
	}

	score += dnaRiskPoints * len(profile.DNARisks)
	score += familyHistoryPoints * len(profile.FamilyHistory)

	return min(score, MaxValue)
}

// TierOf returns the tier a risk value falls into.
func TierOf(value int) Tier {
	switch {
	case value < LowThreshold:
		return TierLow
	case value > ElevatedThreshold:
		return TierElevated
	default:
		return TierModerate
	}
}

// agePoints is a step function with breakpoints at 30, 45 and 60.
// Negative ages are treated as 0.
func agePoints(age int) int {
	switch {
	case age < 30:
		return ageUnder30Points
	case age < 45:
		return ageUnder45Points
	case age < 60:
		return ageUnder60Points
	default:
		return ageSixtyPlusPoints
	}
}

func lifestylePoints(l types.Lifestyle) int {
	switch l {
	case types.LifestyleSedentary:
		return sedentaryPoints
	case types.LifestyleModerate:
		return moderatePoints
	case types.LifestyleActive:
		return activePoints
	default:
		return 0
	}
}

func exercisePoints(f types.ExerciseFrequency) int {
	if f == types.ExerciseNever || f == types.ExerciseRarely {
		return lowExercisePoints
	}
	return 0
}

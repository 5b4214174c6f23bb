package advisor

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/hmhhmm/apex-insurance/internal/llm"
	"github.com/hmhhmm/apex-insurance/internal/prompts"
	"github.com/hmhhmm/apex-insurance/internal/risk"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// ErrIncompleteNarrative is returned when the model's JSON lacks a required field.
var ErrIncompleteNarrative = eris.New("generated narrative is incomplete")

type narrative struct {
	OverallAnalysis string   `json:"overall_analysis"`
	RiskFactors     []string `json:"risk_factors"`
	SavingsTips     []string `json:"savings_tips"`
}

func buildNarrativePrompt(profile *types.UserProfile, bundle *types.RecommendationBundle) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "failed to encode profile")
	}
	plansJSON, err := json.MarshalIndent(bundle.TopRecommendations, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "failed to encode recommendations")
	}
	return prompts.Render("advisor.json", "narrative", map[string]string{
		"Profile":   string(profileJSON),
		"RiskValue": strconv.Itoa(bundle.RiskValue),
		"Tier":      string(risk.TierOf(bundle.RiskValue)),
		"Plans":     string(plansJSON),
	})
}

// generateNarrative makes exactly one JSON generation call and validates the result.
func generateNarrative(ctx context.Context, client llm.Client, tier llm.ModelTier, profile *types.UserProfile, bundle *types.RecommendationBundle) (*narrative, error) {
	prompt, err := buildNarrativePrompt(profile, bundle)
	if err != nil {
		return nil, err
	}

	raw, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, eris.Wrap(err, "narrative generation failed")
	}
	raw = llm.CleanJSONBlock(raw)
	if raw == "" {
		return nil, eris.New("narrative generation returned empty output")
	}

	var n narrative
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, eris.Wrap(err, "narrative is not valid JSON")
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *narrative) validate() error {
	if strings.TrimSpace(n.OverallAnalysis) == "" {
		return eris.Wrap(ErrIncompleteNarrative, "overall_analysis is empty")
	}
	if n.RiskFactors == nil {
		return eris.Wrap(ErrIncompleteNarrative, "risk_factors is missing")
	}
	if len(n.SavingsTips) == 0 {
		return eris.Wrap(ErrIncompleteNarrative, "savings_tips is empty")
	}
	return nil
}

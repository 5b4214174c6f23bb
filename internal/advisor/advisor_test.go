package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmhhmm/apex-insurance/internal/llm/llmtest"
	"github.com/hmhhmm/apex-insurance/internal/ranking"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		Age:               28,
		Lifestyle:         types.LifestyleActive,
		ExerciseFrequency: types.ExerciseOften,
		SmokingStatus:     types.SmokingNo,
		Budget:            200,
		SelectedTypes:     []string{types.PlanTypeHealth, types.PlanTypeSports},
	}
}

func testCatalog() []types.InsurancePlan {
	return []types.InsurancePlan{
		{ID: "h1", Type: types.PlanTypeHealth, BasePrice: 80},
		{ID: "s1", Type: types.PlanTypeSports, BasePrice: 30},
		{ID: "l1", Type: types.PlanTypeLife, BasePrice: 40},
	}
}

const validNarrative = `{"overall_analysis":"You are low risk.","risk_factors":[],"savings_tips":["Pay annually"]}`

func TestRecommend_DeterministicByDefault(t *testing.T) {
	client := &llmtest.FakeClient{Response: validNarrative}
	a := New(client, nil, Options{})

	got := a.Recommend(context.Background(), testProfile(), testCatalog())

	assert.Equal(t, ranking.Recommend(testProfile(), testCatalog()), got)
	assert.Equal(t, types.NarrativeDeterministic, got.NarrativeSource)
	assert.Empty(t, client.Calls(), "narrative is disabled by default")
}

func TestRecommend_GenerativeNarrativeReplacesOnlyNarrative(t *testing.T) {
	client := &llmtest.FakeClient{Response: "```json\n" + validNarrative + "\n```"}
	a := New(client, nil, Options{Narrative: true})

	want := ranking.Recommend(testProfile(), testCatalog())
	got := a.Recommend(context.Background(), testProfile(), testCatalog())

	assert.Equal(t, types.NarrativeGenerative, got.NarrativeSource)
	assert.Equal(t, "You are low risk.", got.OverallAnalysis)
	assert.Equal(t, []string{}, got.RiskFactors)
	assert.Equal(t, []string{"Pay annually"}, got.SavingsTips)
	assert.Equal(t, want.RiskValue, got.RiskValue)
	assert.Equal(t, want.TopRecommendations, got.TopRecommendations)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "GenerateJSON", calls[0].Method)
	assert.Contains(t, calls[0].Prompt, "25/100")
	assert.Contains(t, calls[0].Prompt, `"plan_id": "s1"`)
}

func TestRecommend_FallsBackOnGenerationFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *llmtest.FakeClient
	}{
		{name: "transport error", client: &llmtest.FakeClient{Err: errors.New("unavailable")}},
		{name: "empty output", client: &llmtest.FakeClient{Response: "   "}},
		{name: "malformed json", client: &llmtest.FakeClient{Response: `{"overall_analysis": "x"`}},
		{name: "missing overall analysis", client: &llmtest.FakeClient{Response: `{"risk_factors":[],"savings_tips":["a"]}`}},
		{name: "missing risk factors", client: &llmtest.FakeClient{Response: `{"overall_analysis":"x","savings_tips":["a"]}`}},
		{name: "empty savings tips", client: &llmtest.FakeClient{Response: `{"overall_analysis":"x","risk_factors":[],"savings_tips":[]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.client, nil, Options{Narrative: true})

			got := a.Recommend(context.Background(), testProfile(), testCatalog())

			assert.Equal(t, ranking.Recommend(testProfile(), testCatalog()), got)
			assert.Len(t, tt.client.Calls(), 1, "no retries")
		})
	}
}

func TestRecommend_TimeoutFallsBack(t *testing.T) {
	client := &llmtest.FakeClient{Block: true}
	a := New(client, nil, Options{Narrative: true, NarrativeTimeout: 20 * time.Millisecond})

	start := time.Now()
	got := a.Recommend(context.Background(), testProfile(), testCatalog())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, types.NarrativeDeterministic, got.NarrativeSource)
}

func TestRecommend_NarrativeWithoutClient(t *testing.T) {
	a := New(nil, nil, Options{Narrative: true})

	assert.False(t, a.NarrativeEnabled())
	got := a.Recommend(context.Background(), testProfile(), testCatalog())
	assert.Equal(t, types.NarrativeDeterministic, got.NarrativeSource)
}

func TestRecommend_UsesCache(t *testing.T) {
	client := &llmtest.FakeClient{Response: validNarrative}
	cache := NewMemoryCache()
	a := New(client, cache, Options{Narrative: true})

	first := a.Recommend(context.Background(), testProfile(), testCatalog())
	second := a.Recommend(context.Background(), testProfile(), testCatalog())

	assert.Equal(t, first, second)
	assert.Len(t, client.Calls(), 1, "second call is served from cache")
	assert.Equal(t, 1, cache.Len())

	other := testProfile()
	other.Age = 60
	a.Recommend(context.Background(), other, testCatalog())
	assert.Len(t, client.Calls(), 2)
	assert.Equal(t, 2, cache.Len())
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*types.RecommendationBundle, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, *types.RecommendationBundle, time.Duration) error {
	return errors.New("cache down")
}

func TestRecommend_CacheErrorsAreIgnored(t *testing.T) {
	a := New(nil, failingCache{}, Options{})

	got := a.Recommend(context.Background(), testProfile(), testCatalog())

	assert.Equal(t, ranking.Recommend(testProfile(), testCatalog()), got)
}

//go:build integration

package advisor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Set TEST_REDIS_URL (e.g. redis://localhost:6379/15) to run these tests.
func getTestRedis(t *testing.T) *RedisCache {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	cache, err := NewRedisCache(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache := getTestRedis(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	bundle := &types.RecommendationBundle{
		RiskValue:          42,
		TopRecommendations: []types.RecommendationResult{{PlanID: "h1", MatchScore: 90}},
		RiskFactors:        []string{},
		SavingsTips:        []string{"tip"},
		NarrativeSource:    types.NarrativeDeterministic,
	}
	require.NoError(t, cache.Set(ctx, key, bundle, time.Minute))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bundle, got)
}

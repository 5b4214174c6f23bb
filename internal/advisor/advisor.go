// Package advisor produces recommendation bundles: deterministic ranking, optional
// generative narrative, and caching.
package advisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/llm"
	"github.com/hmhhmm/apex-insurance/internal/ranking"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Default option values.
const (
	DefaultNarrativeTimeout = 8 * time.Second
	DefaultCacheTTL         = 24 * time.Hour
)

// Options configures an Advisor. The zero value ranks deterministically without caching.
type Options struct {
	// Narrative enables one generative attempt to rewrite the narrative fields.
	Narrative        bool
	NarrativeTimeout time.Duration
	Tier             llm.ModelTier
	CacheTTL         time.Duration
}

// Advisor builds recommendation bundles.
type Advisor struct {
	client llm.Client
	cache  Cache
	opts   Options
	logger *zap.Logger
}

// New creates an Advisor. client and cache may be nil.
func New(client llm.Client, cache Cache, opts Options) *Advisor {
	if opts.NarrativeTimeout <= 0 {
		opts.NarrativeTimeout = DefaultNarrativeTimeout
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	return &Advisor{
		client: client,
		cache:  cache,
		opts:   opts,
		logger: zap.L().With(zap.String("component", "advisor")),
	}
}

// NarrativeEnabled reports whether a generative narrative will be attempted.
func (a *Advisor) NarrativeEnabled() bool {
	return a.opts.Narrative && a.client != nil
}

// Recommend ranks catalog for profile. It never fails: generative and cache
// errors degrade to the deterministic result.
func (a *Advisor) Recommend(ctx context.Context, profile *types.UserProfile, catalog []types.InsurancePlan) *types.RecommendationBundle {
	bundle := ranking.Recommend(profile, catalog)

	key := ""
	if a.cache != nil {
		var err error
		key, err = CacheKey(profile, catalog)
		if err != nil {
			a.logger.Warn("cache key unavailable", zap.Error(err))
		} else if cached, ok := a.lookup(ctx, key); ok {
			return cached
		}
	}

	if a.NarrativeEnabled() {
		a.applyNarrative(ctx, profile, bundle)
	}

	if key != "" {
		if err := a.cache.Set(ctx, key, bundle, a.opts.CacheTTL); err != nil {
			a.logger.Warn("failed to cache recommendation", zap.Error(err))
		}
	}
	return bundle
}

func (a *Advisor) lookup(ctx context.Context, key string) (*types.RecommendationBundle, bool) {
	cached, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		a.logger.Warn("cache lookup failed", zap.Error(err))
		return nil, false
	}
	if ok {
		a.logger.Debug("recommendation cache hit", zap.String("key", key))
	}
	return cached, ok
}

// applyNarrative replaces only the narrative fields, and only when generation fully succeeds.
func (a *Advisor) applyNarrative(ctx context.Context, profile *types.UserProfile, bundle *types.RecommendationBundle) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.NarrativeTimeout)
	defer cancel()

	n, err := generateNarrative(ctx, a.client, a.opts.Tier, profile, bundle)
	if err != nil {
		a.logger.Warn("generative narrative failed, keeping deterministic narrative", zap.Error(err))
		return
	}

	bundle.OverallAnalysis = n.OverallAnalysis
	bundle.RiskFactors = n.RiskFactors
	bundle.SavingsTips = n.SavingsTips
	bundle.NarrativeSource = types.NarrativeGenerative
}

package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/advisor"
	"github.com/hmhhmm/apex-insurance/internal/catalog"
	"github.com/hmhhmm/apex-insurance/internal/chat"
	"github.com/hmhhmm/apex-insurance/internal/config"
	"github.com/hmhhmm/apex-insurance/internal/llm"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// services bundles what the commands build from config. Close releases them.
type services struct {
	Catalog   []types.InsurancePlan
	LLM       llm.Client
	Advisor   *advisor.Advisor
	Assistant *chat.Assistant

	closers []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// loadCatalog returns the configured catalog, or the embedded one when no path is set.
func loadCatalog(c *config.Config) ([]types.InsurancePlan, error) {
	if c.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	plans, err := catalog.Load(c.Catalog.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "load catalog %s", c.Catalog.Path)
	}
	return plans, nil
}

// newLLMClient returns nil without an API key; callers then use the deterministic paths.
func newLLMClient(ctx context.Context, c *config.Config) (llm.Client, *llm.Config, error) {
	llmCfg := llm.ConfigFor(c.LLM.Provider)
	apiKey := c.LLM.APIKey()
	if apiKey == "" {
		zap.L().Info("no LLM API key configured, generative features disabled",
			zap.String("provider", c.LLM.Provider))
		return nil, llmCfg, nil
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create LLM client")
	}
	return client, llmCfg, nil
}

// buildServices wires the catalog, LLM client, advisor and assistant from config.
func buildServices(ctx context.Context, c *config.Config) (*services, error) {
	plans, err := loadCatalog(c)
	if err != nil {
		return nil, err
	}

	svc := &services{Catalog: plans}

	client, llmCfg, err := newLLMClient(ctx, c)
	if err != nil {
		return nil, err
	}
	svc.LLM = client

	var resolver *llm.ModelResolver
	if client != nil {
		svc.closers = append(svc.closers, func() {
			if err := client.Close(); err != nil {
				zap.L().Warn("failed to close LLM client", zap.Error(err))
			}
		})
		resolver = llm.NewModelResolver(llmCfg.Candidates, client.Ping)
	}

	cache, err := newCache(ctx, c)
	if err != nil {
		svc.Close()
		return nil, err
	}
	if closer, ok := cache.(interface{ Close() error }); ok {
		svc.closers = append(svc.closers, func() { _ = closer.Close() })
	}

	svc.Advisor = advisor.New(client, cache, advisor.Options{
		Narrative:        c.Advisor.Narrative,
		NarrativeTimeout: time.Duration(c.Advisor.NarrativeTimeoutSecs) * time.Second,
		CacheTTL:         time.Duration(c.Advisor.CacheTTLMinutes) * time.Minute,
	})
	svc.Assistant = chat.New(client, resolver, chat.Options{
		Timeout:    time.Duration(c.Chat.TimeoutSecs) * time.Second,
		MaxHistory: c.Chat.MaxHistory,
	})

	return svc, nil
}

// newCache uses Redis when configured and an in-memory cache otherwise.
func newCache(ctx context.Context, c *config.Config) (advisor.Cache, error) {
	if c.Redis.URL == "" {
		return advisor.NewMemoryCache(), nil
	}
	cache, err := advisor.NewRedisCache(ctx, c.Redis.URL)
	if err != nil {
		return nil, eris.Wrap(err, "connect redis")
	}
	return cache, nil
}

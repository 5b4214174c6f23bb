package llm

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoModelAvailable is returned when none of the candidate models can be reached.
var ErrNoModelAvailable = eris.New("no candidate model is available")

// defaultProbeTimeout bounds one shared probe run, independent of any caller's deadline.
const defaultProbeTimeout = 15 * time.Second

// ProbeFunc reports whether a model can serve requests.
type ProbeFunc func(ctx context.Context, model string) error

// ModelResolver picks the first reachable model from an ordered candidate list and
// remembers it until Reset is called. Concurrent callers share a single probe run.
type ModelResolver struct {
	candidates []string
	probe      ProbeFunc
	logger     *zap.Logger

	group        singleflight.Group
	probeTimeout time.Duration

	mu       sync.RWMutex
	resolved string
}

// NewModelResolver creates a resolver over candidates. A nil probe accepts the first candidate.
func NewModelResolver(candidates []string, probe ProbeFunc) *ModelResolver {
	return &ModelResolver{
		candidates:   candidates,
		probe:        probe,
		probeTimeout: defaultProbeTimeout,
		logger:       zap.L().With(zap.String("component", "model_resolver")),
	}
}

// Resolve returns the remembered model, probing candidates in order on first use.
// The shared probe run ignores ctx cancellation and is bounded by probeTimeout.
// Each caller returns early when its own ctx is done.
func (r *ModelResolver) Resolve(ctx context.Context) (string, error) {
	if model, ok := r.Resolved(); ok {
		return model, nil
	}
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "model resolution cancelled")
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan("resolve", func() (any, error) {
		if model, ok := r.Resolved(); ok {
			return model, nil
		}
		pctx, cancel := context.WithTimeout(probeCtx, r.probeTimeout)
		defer cancel()

		model, err := r.probeCandidates(pctx)
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.resolved = model
		r.mu.Unlock()
		return model, nil
	})

	select {
	case <-ctx.Done():
		return "", eris.Wrap(ctx.Err(), "model resolution cancelled")
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *ModelResolver) probeCandidates(ctx context.Context) (string, error) {
	if len(r.candidates) == 0 {
		return "", ErrNoModelAvailable
	}
	if r.probe == nil {
		return r.candidates[0], nil
	}

	var lastErr error
	for _, model := range r.candidates {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "model resolution cancelled")
		}
		if err := r.probe(ctx, model); err != nil {
			r.logger.Debug("candidate model rejected", zap.String("model", model), zap.Error(err))
			lastErr = err
			continue
		}
		r.logger.Info("resolved model", zap.String("model", model))
		return model, nil
	}
	return "", eris.Wrapf(ErrNoModelAvailable, "last error: %v", lastErr)
}

// Resolved returns the remembered model, if any.
func (r *ModelResolver) Resolved() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved, r.resolved != ""
}

// Reset forgets the remembered model so the next Resolve probes again.
func (r *ModelResolver) Reset() {
	r.mu.Lock()
	r.resolved = ""
	r.mu.Unlock()
}

// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/hmhhmm/apex-insurance/internal/llm"
)

// Call records one request made to a FakeClient.
type Call struct {
	Method string
	Prompt string
	Tier   llm.ModelTier
	Model  string
}

// FakeClient returns canned responses and records every call.
// Chunks, when set, are streamed in order; otherwise Response is streamed as one chunk.
type FakeClient struct {
	Response string
	Chunks   []string
	Err      error
	PingErr  map[string]error
	// Block makes generation wait for ctx to be done before returning ctx.Err().
	Block bool

	mu     sync.Mutex
	calls  []Call
	models map[llm.ModelTier]string
	parent *FakeClient
}

var _ llm.Client = (*FakeClient)(nil)

func (f *FakeClient) root() *FakeClient {
	if f.parent != nil {
		return f.parent
	}
	return f
}

func (f *FakeClient) record(method, prompt string, tier llm.ModelTier) {
	r := f.root()
	r.mu.Lock()
	r.calls = append(r.calls, Call{Method: method, Prompt: prompt, Tier: tier, Model: f.GetModel(tier)})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls, including those made through WithModel clients.
func (f *FakeClient) Calls() []Call {
	r := f.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (f *FakeClient) respond(ctx context.Context) (string, error) {
	r := f.root()
	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Response, nil
}

// GenerateContent returns Response or Err.
func (f *FakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.record("GenerateContent", prompt, tier)
	return f.respond(ctx)
}

// GenerateJSON returns Response or Err.
func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.record("GenerateJSON", prompt, tier)
	return f.respond(ctx)
}

// StreamContent emits Chunks (or Response) through onChunk.
func (f *FakeClient) StreamContent(ctx context.Context, prompt string, tier llm.ModelTier, onChunk func(string) error) error {
	f.record("StreamContent", prompt, tier)
	text, err := f.respond(ctx)
	if err != nil {
		return err
	}
	chunks := f.root().Chunks
	if len(chunks) == 0 {
		chunks = []string{text}
	}
	for _, c := range chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

// GetModel returns the override set by WithModel, or "fake-<tier>".
func (f *FakeClient) GetModel(tier llm.ModelTier) string {
	if m, ok := f.models[tier]; ok {
		return m
	}
	return "fake-" + string(tier)
}

// WithModel returns a client sharing this client's responses and call log.
func (f *FakeClient) WithModel(tier llm.ModelTier, model string) llm.Client {
	models := make(map[llm.ModelTier]string, len(f.models)+1)
	for k, v := range f.models {
		models[k] = v
	}
	models[tier] = model
	return &FakeClient{models: models, parent: f.root()}
}

// Ping returns PingErr[model].
func (f *FakeClient) Ping(_ context.Context, model string) error {
	return f.root().PingErr[model]
}

// Close does nothing.
func (f *FakeClient) Close() error {
	return nil
}

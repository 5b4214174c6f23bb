// Package chat implements the insurance assistant behind the chat widget.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hmhhmm/apex-insurance/internal/llm"
	"github.com/hmhhmm/apex-insurance/internal/prompts"
	"github.com/hmhhmm/apex-insurance/internal/types"
)

// Defaults for Options.
const (
	DefaultTimeout    = 20 * time.Second
	DefaultMaxHistory = 10
)

// ErrEmptyMessage is returned for a message that is blank after trimming.
var ErrEmptyMessage = eris.New("message must not be empty")

// Options configures an Assistant.
type Options struct {
	Tier       llm.ModelTier
	Timeout    time.Duration
	MaxHistory int
}

// Assistant answers customer questions with a single LLM call per message.
type Assistant struct {
	client   llm.Client
	resolver *llm.ModelResolver
	opts     Options
	logger   *zap.Logger
}

// New creates an Assistant. A nil client makes every reply the fallback; a nil
// resolver uses the client's configured model for the tier.
func New(client llm.Client, resolver *llm.ModelResolver, opts Options) *Assistant {
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	return &Assistant{
		client:   client,
		resolver: resolver,
		opts:     opts,
		logger:   zap.L().With(zap.String("component", "chat")),
	}
}

// FallbackReply is the fixed reply used whenever the model cannot answer.
func FallbackReply() string {
	return prompts.MustGet("chat.json", "fallback")
}

func fallback() types.ChatResponse {
	return types.ChatResponse{Reply: FallbackReply(), Fallback: true}
}

func validate(req *types.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}
	return req.Validate()
}

// Reply answers req. The error is non-nil only for an invalid request; model
// failures produce the fallback reply.
func (a *Assistant) Reply(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	if err := validate(&req); err != nil {
		return types.ChatResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	client, err := a.prepare(ctx)
	if err != nil {
		a.logger.Warn("chat model unavailable", zap.Error(err))
		return fallback(), nil
	}
	prompt, err := a.buildPrompt(req)
	if err != nil {
		a.logger.Warn("failed to build chat prompt", zap.Error(err))
		return fallback(), nil
	}

	reply, err := client.GenerateContent(ctx, prompt, a.opts.Tier)
	reply = strings.TrimSpace(reply)
	if err == nil && reply == "" {
		err = eris.New("empty reply")
	}
	if err != nil {
		a.logger.Warn("chat generation failed", zap.Error(err))
		return fallback(), nil
	}

	return types.ChatResponse{Reply: reply, Model: client.GetModel(a.opts.Tier)}, nil
}

// Stream answers req chunk by chunk. On model failure the fallback reply is sent as a
// single chunk. The error is non-nil for an invalid request or when onChunk fails.
func (a *Assistant) Stream(ctx context.Context, req types.ChatRequest, onChunk func(string) error) (types.ChatResponse, error) {
	if err := validate(&req); err != nil {
		return types.ChatResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	client, err := a.prepare(ctx)
	var prompt string
	if err == nil {
		prompt, err = a.buildPrompt(req)
	}

	var sb strings.Builder
	var sinkErr error
	if err == nil {
		err = client.StreamContent(ctx, prompt, a.opts.Tier, func(chunk string) error {
			sb.WriteString(chunk)
			if cerr := onChunk(chunk); cerr != nil {
				sinkErr = cerr
				return cerr
			}
			return nil
		})
	}
	if sinkErr != nil {
		return types.ChatResponse{}, sinkErr
	}
	if err == nil && strings.TrimSpace(sb.String()) == "" {
		err = eris.New("empty reply")
	}
	if err != nil {
		a.logger.Warn("chat stream failed", zap.Error(err))
		fb := fallback()
		if cerr := onChunk(fb.Reply); cerr != nil {
			return types.ChatResponse{}, cerr
		}
		return fb, nil
	}

	return types.ChatResponse{Reply: sb.String(), Model: client.GetModel(a.opts.Tier)}, nil
}

// prepare returns a client bound to the resolved model.
func (a *Assistant) prepare(ctx context.Context) (llm.Client, error) {
	if a.client == nil {
		return nil, eris.New("no LLM client configured")
	}
	if a.resolver == nil {
		return a.client, nil
	}
	model, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return a.client.WithModel(a.opts.Tier, model), nil
}

func (a *Assistant) buildPrompt(req types.ChatRequest) (string, error) {
	contextJSON := []byte("{}")
	if len(req.Context) > 0 {
		var err error
		if contextJSON, err = json.Marshal(req.Context); err != nil {
			return "", eris.Wrap(err, "failed to encode chat context")
		}
	}

	system, err := prompts.Get("chat.json", "system")
	if err != nil {
		return "", err
	}
	return prompts.Render("chat.json", "conversation", map[string]string{
		"System":  system,
		"Context": string(contextJSON),
		"History": formatHistory(req.History, a.opts.MaxHistory),
		"Message": strings.TrimSpace(req.Message),
	})
}

// formatHistory renders the most recent limit turns, oldest first.
func formatHistory(history []types.ChatMessage, limit int) string {
	if len(history) == 0 {
		return "(no previous messages)"
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	lines := make([]string, 0, len(history))
	for _, m := range history {
		speaker := "Customer"
		if m.Role == "assistant" {
			speaker = "Apex"
		}
		lines = append(lines, speaker+": "+strings.TrimSpace(m.Content))
	}
	return strings.Join(lines, "\n")
}

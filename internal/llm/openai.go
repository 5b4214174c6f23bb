package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/rotisserie/eris"
)

const jsonOnlyInstruction = "You must respond with valid JSON only. Do not include any text outside the JSON object."

// OpenAIClient implements Client for OpenAI chat completions
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	client := openai.NewClient(oaioption.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client, config: config}, nil
}

func (c *OpenAIClient) params(tier ModelTier, messages ...openai.ChatCompletionMessageParamUnion) (openai.ChatCompletionNewParams, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return openai.ChatCompletionNewParams{}, eris.Errorf("no model configured for tier %s", tier)
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(c.config.Temperature)),
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "failed to generate content")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	params, err := c.params(tier, openai.UserMessage(prompt))
	if err != nil {
		return "", err
	}
	return c.complete(ctx, params)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	params, err := c.params(tier, openai.SystemMessage(jsonOnlyInstruction), openai.UserMessage(prompt))
	if err != nil {
		return "", err
	}
	text, err := c.complete(ctx, params)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// StreamContent streams generated text chunk by chunk
func (c *OpenAIClient) StreamContent(ctx context.Context, prompt string, tier ModelTier, onChunk func(string) error) error {
	params, err := c.params(tier, openai.UserMessage(prompt))
	if err != nil {
		return err
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onChunk(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return eris.Wrap(err, "failed to stream content")
	}
	return nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// WithModel returns a client that shares the HTTP client but uses model for tier
func (c *OpenAIClient) WithModel(tier ModelTier, model string) Client {
	return &OpenAIClient{client: c.client, config: c.config.WithModel(tier, model)}
}

// Ping retrieves the model record to confirm it is available to this key
func (c *OpenAIClient) Ping(ctx context.Context, model string) error {
	if _, err := c.client.Models.Get(ctx, model); err != nil {
		return eris.Wrapf(err, "model %s unavailable", model)
	}
	return nil
}

// Close is a no-op; the OpenAI client holds no long-lived resources
func (c *OpenAIClient) Close() error {
	return nil
}

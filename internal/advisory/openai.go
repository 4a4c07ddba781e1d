package advisory

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Defaults for the Groq-hosted completion endpoint.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a chat completion client. The zero configuration points
// at Groq with the default model.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	apiCfg := openai.DefaultConfig(apiKey)
	apiCfg.BaseURL = cfg.baseURL

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.model,
	}
}

// Complete implements Advisory. The system message is omitted when empty.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

type clientConfig struct {
	baseURL string
	model   string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithBaseURL points the client at a different OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel overrides the completion model.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// Client implements core.TextCompleter against the OpenAI chat completions
// API or any compatible endpoint (base URL is configurable).
type Client struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewClient(apiKey, baseURL, modelName string, maxTokens int, temperature float32, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, &core.ConfigError{Missing: []string{"openai.api_key"}}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}, nil
}

// Complete sends one system+user exchange and returns the completion text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model %s", c.modelName)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.modelName),
		zap.String("request_id", resp.ID))
	return resp.Choices[0].Message.Content, nil
}

package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/bedrock"
	"github.com/supportops/feedback-triage/internal/adapters/gemini"
	"github.com/supportops/feedback-triage/internal/adapters/openai"
	"github.com/supportops/feedback-triage/internal/ai"
	"github.com/supportops/feedback-triage/internal/config"
	"github.com/supportops/feedback-triage/internal/core"
)

// LLMFactory creates text completion clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{cfg: cfg, logger: logger}
}

// CreateCompleter creates a new text completer based on the configuration
func (f *LLMFactory) CreateCompleter() (core.TextCompleter, error) {
	aiConfig := f.cfg.GetAI()

	switch aiConfig.Provider {
	case "openai":
		c := f.cfg.GetOpenAI()
		return openai.NewClient(c.APIKey, c.BaseURL, c.ModelName, c.MaxTokens, c.Temperature, f.logger)
	case "gemini":
		c := f.cfg.GetGemini()
		return gemini.NewClient(context.Background(), c.APIKey, c.ModelName, c.MaxTokens, c.Temperature, c.TopP, f.logger)
	case "bedrock":
		c := f.cfg.GetBedrock()
		return bedrock.NewClient(context.Background(), c.Region, c.ModelID, c.MaxTokens, c.Temperature, c.TopP, f.logger)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", aiConfig.Provider)
	}
}

// CreateTriager creates the AI triage adapter over the configured completer
func (f *LLMFactory) CreateTriager() (core.Triager, error) {
	completer, err := f.CreateCompleter()
	if err != nil {
		return nil, err
	}
	aiConfig := f.cfg.GetAI()
	return ai.New(completer, f.logger, aiConfig.MaxBodySize, aiConfig.Timeout, aiConfig.ReplyLocale)
}

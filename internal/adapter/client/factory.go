package client

import (
	"fmt"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/config"
)

// NewCompletionClient builds the completion client for the configured provider
func NewCompletionClient(cfg *config.LLMConfig) (service.CompletionClient, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
	}

	switch cfg.Provider {
	case "", "openai":
		var opts []openaioption.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
		}
		return NewOpenAIClient(apiKey, cfg.Model, opts...), nil
	case "anthropic":
		var opts []anthropicoption.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
		}
		return NewAnthropicClient(apiKey, cfg.Model, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

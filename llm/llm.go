package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexandro/bugreport-agent/config"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty model response")

// Request is a single chat completion: one system instruction and one user message.
type Request struct {
	System string
	Prompt string
}

// Client sends one completion request and returns the model's text.
// Calls are made once; there is no retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the client for cfg.Provider. It fails with config.ErrMissingAPIKey
// before any network call when the provider key is not configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	model := cfg.ResolvedModel()

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIOptions{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		}), nil
	case config.ProviderAnthropic:
		return NewAnthropic(AnthropicOptions{
			APIKey: apiKey,
			Model:  model,
			Logger: logger,
		}), nil
	case config.ProviderGemini:
		return NewGemini(ctx, GeminiOptions{
			APIKey: apiKey,
			Model:  model,
			Logger: logger,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}

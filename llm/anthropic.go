package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicOptions configures the Anthropic Messages client.
type AnthropicOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  *slog.Logger
}

type Anthropic struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func NewAnthropic(opts AnthropicOptions) *Anthropic {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Anthropic{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
		logger: logger,
	}
}

func (c *Anthropic) Name() string { return "anthropic:" + c.model }

func (c *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			c.logger.Debug("completion received", "provider", "anthropic", "model", c.model,
				"bytes", len(block.Text), "inputTokens", message.Usage.InputTokens,
				"outputTokens", message.Usage.OutputTokens, "elapsed", time.Since(start))
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
}

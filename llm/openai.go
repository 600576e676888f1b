package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIBaseURL is used when no compatible endpoint is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIOptions configures the OpenAI chat-completions client.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// OpenAI talks to /chat/completions on OpenAI or a compatible server.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	base := opts.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	// The base URL is always set so OPENAI_BASE_URL in the process
	// environment cannot override the resolved configuration.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(strings.TrimRight(base, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OpenAI{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
		logger: logger,
	}
}

func (c *OpenAI) Name() string { return "openai:" + c.model }

func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	text := completion.Choices[0].Message.Content
	c.logger.Debug("completion received", "provider", "openai", "model", c.model, "bytes", len(text),
		"promptTokens", completion.Usage.PromptTokens, "completionTokens", completion.Usage.CompletionTokens,
		"elapsed", time.Since(start))
	return text, nil
}

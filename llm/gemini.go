package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiOptions configures the Gemini client.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  *slog.Logger
}

// Gemini wraps the official genai client for the Gemini API backend.
type Gemini struct {
	cli    *genai.Client
	model  string
	logger *slog.Logger
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gemini{cli: cli, model: opts.Model, logger: logger}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	var temperature float32
	start := time.Now()
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	g.logger.Debug("completion received", "provider", "gemini", "model", g.model, "bytes", sb.Len(), "elapsed", time.Since(start))
	return sb.String(), nil
}

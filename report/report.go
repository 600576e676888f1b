package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/bugreport-agent/llm"
	"github.com/lexandro/bugreport-agent/snippet"
)

// ErrMalformedResponse is returned when the model output has no parseable JSON object.
var ErrMalformedResponse = errors.New("malformed model response")

// SystemPrompt is the fixed instruction sent with every report request.
const SystemPrompt = "You are a bug report assistant. Given user feedback and relevant code snippets, " +
	"produce a JSON report following the given schema, then render a Markdown report."

// Report is the model's structured answer plus its Markdown rendering.
type Report struct {
	// JSON is the object exactly as the model produced it, key order included.
	JSON     json.RawMessage
	Markdown string
}

// Fields decodes the JSON object.
func (r *Report) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.JSON, &fields); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return fields, nil
}

// IndentedJSON returns the object pretty-printed with a two-space indent and a trailing newline.
func (r *Report) IndentedJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.JSON, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting report: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Generator turns feedback and snippets into a Report with a single model call.
type Generator struct {
	client llm.Client
	logger *slog.Logger
}

// NewGenerator wraps client. Use llm.New to build a client; it rejects a missing API key.
func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{client: client, logger: logger}
}

// Generate sends the prompt once and parses the reply. There is no retry.
func (g *Generator) Generate(ctx context.Context, feedback string, snippets []snippet.Snippet) (*Report, error) {
	if len(snippets) == 0 {
		g.logger.Warn("no code snippets found, sending feedback only")
	}
	prompt := BuildPrompt(feedback, snippets)

	start := time.Now()
	text, err := g.client.Complete(ctx, llm.Request{System: SystemPrompt, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("requesting report from %s: %w", g.client.Name(), err)
	}
	g.logger.Info("model replied", "client", g.client.Name(), "promptBytes", len(prompt), "replyBytes", len(text), "elapsed", time.Since(start))

	return ParseResponse(text)
}

// BuildPrompt renders the user message. Each snippet becomes
// "File: <path>\nLines <s>-<e>:\n<text>" and blocks are separated by a blank line.
func BuildPrompt(feedback string, snippets []snippet.Snippet) string {
	blocks := make([]string, 0, len(snippets))
	for _, s := range snippets {
		blocks = append(blocks, fmt.Sprintf("File: %s\nLines %d-%d:\n%s", s.File, s.StartLine, s.EndLine, s.Text))
	}

	var sb strings.Builder
	sb.WriteString("User feedback:\n")
	sb.WriteString(feedback)
	sb.WriteString("\n\nRelevant code snippets:\n")
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n\nPlease output the JSON object first, then the Markdown.")
	return sb.String()
}

// ParseResponse splits a reply into its JSON object and Markdown narrative.
// The object spans from the first '{' to the last '}'; everything after it, trimmed,
// is the Markdown.
func ParseResponse(text string) (*Report, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	raw := []byte(text[start : end+1])
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &Report{
		JSON:     compact.Bytes(),
		Markdown: strings.TrimSpace(text[end+1:]),
	}, nil
}

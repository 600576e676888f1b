package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/bugreport-agent/pipeline"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GenerateArgs defines the input parameters for the bugreport_generate tool.
type GenerateArgs struct {
	Feedback string `json:"feedback" jsonschema:"User feedback describing the problem"`
	TopN     int    `json:"topN,omitempty" jsonschema:"Number of code snippets to include in the prompt (default 5)"`
}

// GenerateFunc runs the report pipeline. It is provided by main.go so the
// server can start without an API key; the error surfaces on first use.
type GenerateFunc func(ctx context.Context, feedback string, topN int) (*pipeline.Outcome, error)

// GenerateHandler holds the dependencies for the generate tool.
type GenerateHandler struct {
	Generate GenerateFunc
	TopN     int
	Logger   *slog.Logger
}

// Handle processes a bugreport_generate request. Nothing is written to disk.
func (h *GenerateHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args GenerateArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Feedback == "" {
		h.Logger.Warn("bugreport_generate called with empty feedback")
		return errorResult("Error: feedback parameter is required"), nil, nil
	}
	topN := args.TopN
	if topN <= 0 {
		topN = h.TopN
	}

	h.Logger.Info("bugreport_generate started", "topN", topN)
	outcome, err := h.Generate(ctx, args.Feedback, topN)
	if err != nil {
		h.Logger.Error("bugreport_generate failed", "error", err)
		return errorResult(fmt.Sprintf("Report error: %v", err)), nil, nil
	}

	output, err := FormatReport(outcome.Report)
	if err != nil {
		h.Logger.Error("bugreport_generate format failed", "error", err)
		return errorResult(fmt.Sprintf("Report error: %v", err)), nil, nil
	}

	h.Logger.Info("bugreport_generate complete",
		"snippets", len(outcome.Snippets),
		"elapsed", time.Since(start),
	)
	return textResult(output), nil, nil
}

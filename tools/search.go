package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/bugreport-agent/search"
	"github.com/lexandro/bugreport-agent/snippet"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the bugreport_search tool.
type SearchArgs struct {
	Feedback     string `json:"feedback" jsonschema:"User feedback or bug description to find relevant code for"`
	TopN         int    `json:"topN,omitempty" jsonschema:"Number of files and matching lines to return (default 5)"`
	ContextLines *int   `json:"contextLines,omitempty" jsonschema:"Number of context lines before and after each match (default 3)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Searcher     *search.Searcher
	TopN         int // default when the request omits topN
	ContextLines int // default when the request omits contextLines
	Logger       *slog.Logger
}

// Handle processes a bugreport_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Feedback == "" {
		h.Logger.Warn("bugreport_search called with empty feedback")
		return errorResult("Error: feedback parameter is required"), nil, nil
	}

	topN := args.TopN
	if topN <= 0 {
		topN = h.TopN
	}
	contextLines := h.ContextLines
	if args.ContextLines != nil {
		contextLines = *args.ContextLines
	}
	if contextLines < 0 {
		return errorResult("Error: contextLines must not be negative"), nil, nil
	}

	result, err := h.Searcher.Search(ctx, args.Feedback, topN)
	if err != nil {
		h.Logger.Error("bugreport_search failed", "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}
	snippets, skipped := snippet.NewReader(contextLines, h.Logger).ReadSnippets(result.Matches)
	skipped = append(append([]search.FileResult(nil), result.Skipped...), skipped...)

	h.Logger.Info("bugreport_search",
		"keywords", len(result.Keywords),
		"files", len(result.Files),
		"snippets", len(snippets),
		"skipped", len(skipped),
		"elapsed", time.Since(start),
	)

	output := FormatSnippets(h.Searcher.RootDir(), result, snippets) + FormatSkipped(h.Searcher.RootDir(), skipped)
	return textResult(output), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

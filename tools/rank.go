package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/bugreport-agent/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RankArgs defines the input parameters for the bugreport_rank tool.
type RankArgs struct {
	Feedback   string `json:"feedback" jsonschema:"User feedback or bug description to score files against"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of files to return (default 20)"`
}

// RankHandler holds the dependencies for the rank tool.
type RankHandler struct {
	Searcher *search.Searcher
	Logger   *slog.Logger
}

// Handle processes a bugreport_rank request. It scores files without reading snippets.
func (h *RankHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RankArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Feedback == "" {
		h.Logger.Warn("bugreport_rank called with empty feedback")
		return errorResult("Error: feedback parameter is required"), nil, nil
	}
	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	keywords := search.ExtractKeywords(args.Feedback)
	scores, scanned, _, err := h.Searcher.ScoreFiles(ctx, keywords)
	if err != nil {
		h.Logger.Error("bugreport_rank failed", "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	result := &search.Result{
		Keywords: keywords,
		Files:    search.TopFiles(scores, maxResults),
		Scanned:  scanned,
	}

	h.Logger.Info("bugreport_rank",
		"keywords", len(keywords),
		"scored", len(scores),
		"results", len(result.Files),
		"elapsed", time.Since(start),
	)
	return textResult(FormatRankedFiles(h.Searcher.RootDir(), result)), nil, nil
}

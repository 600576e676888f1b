package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/bugreport-agent/snippet"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SnippetArgs defines the input parameters for the bugreport_snippet tool.
type SnippetArgs struct {
	FilePath     string `json:"filePath" jsonschema:"File path relative to the repository root (e.g. src/app.py)"`
	Line         int    `json:"line" jsonschema:"1-based line number to center the window on"`
	ContextLines *int   `json:"contextLines,omitempty" jsonschema:"Number of context lines before and after the line (default 3)"`
}

// SnippetHandler holds the dependencies for the snippet tool.
type SnippetHandler struct {
	RootDir      string
	ContextLines int
	Logger       *slog.Logger
}

// Handle processes a bugreport_snippet request.
func (h *SnippetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SnippetArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.FilePath == "" {
		h.Logger.Warn("bugreport_snippet called with empty filePath")
		return errorResult("Error: filePath parameter is required"), nil, nil
	}
	if args.Line < 1 {
		return errorResult("Error: line must be at least 1"), nil, nil
	}
	contextLines := h.ContextLines
	if args.ContextLines != nil {
		contextLines = *args.ContextLines
	}

	path, ok := h.resolve(args.FilePath)
	if !ok {
		h.Logger.Warn("bugreport_snippet path outside root", "filePath", args.FilePath)
		return errorResult(fmt.Sprintf("Error: %s is outside the repository root", args.FilePath)), nil, nil
	}

	s, err := snippet.NewReader(contextLines, h.Logger).ReadWindow(path, args.Line)
	if err != nil {
		h.Logger.Info("bugreport_snippet failed", "filePath", args.FilePath, "line", args.Line, "error", err)
		return errorResult(fmt.Sprintf("Read error: %v", err)), nil, nil
	}

	h.Logger.Info("bugreport_snippet", "filePath", args.FilePath, "line", args.Line, "elapsed", time.Since(start))
	return textResult(FormatSnippet(h.RootDir, s)), nil, nil
}

// resolve joins a relative path to the root and rejects paths that escape it.
func (h *SnippetHandler) resolve(filePath string) (string, bool) {
	if filepath.IsAbs(filePath) {
		return "", false
	}
	joined := filepath.Join(h.RootDir, filepath.FromSlash(filePath))
	rel, err := filepath.Rel(h.RootDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}

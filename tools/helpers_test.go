package tools

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexandro/bugreport-agent/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestSearcher(t *testing.T, root string) *search.Searcher {
	t.Helper()
	s, err := search.NewSearcher(search.Options{RootDir: root, Logger: testLogger()})
	if err != nil {
		t.Fatalf("failed to create searcher: %v", err)
	}
	return s
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}

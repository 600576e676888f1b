package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lexandro/bugreport-agent/report"
	"github.com/lexandro/bugreport-agent/search"
	"github.com/lexandro/bugreport-agent/snippet"
)

// FormatSnippets formats the snippets found for a piece of feedback as human-readable text.
// Paths are shown relative to rootDir.
func FormatSnippets(rootDir string, result *search.Result, snippets []snippet.Snippet) string {
	if len(snippets) == 0 {
		return fmt.Sprintf("No matches found (keywords: %s).", formatKeywords(result))
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d snippets in %d files (keywords: %s):\n\n",
		len(snippets), len(result.Files), formatKeywords(result)))

	for i, s := range snippets {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(FormatSnippet(rootDir, s))
	}
	return builder.String()
}

// FormatSnippet formats one snippet with a header and numbered lines.
func FormatSnippet(rootDir string, s snippet.Snippet) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s:%d-%d ──\n", relativePath(rootDir, s.File), s.StartLine, s.EndLine))

	// Calculate width needed for line numbers
	width := len(fmt.Sprintf("%d", s.EndLine))

	lines := strings.SplitAfter(s.Text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		builder.WriteString(fmt.Sprintf("%*d│ %s\n", width, s.StartLine+i, strings.TrimRight(line, "\n")))
	}
	return builder.String()
}

// FormatRankedFiles formats scored files, highest first.
func FormatRankedFiles(rootDir string, result *search.Result) string {
	if len(result.Files) == 0 {
		return fmt.Sprintf("No files matched (keywords: %s, scanned %d files).", formatKeywords(result), result.Scanned)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Top %d of %d scanned files (keywords: %s):\n\n",
		len(result.Files), result.Scanned, formatKeywords(result)))
	for _, f := range result.Files {
		builder.WriteString(fmt.Sprintf("  %4d  %s\n", f.Score, relativePath(rootDir, f.Path)))
	}
	return builder.String()
}

// FormatSkipped lists files that were left out, or "" when there are none.
func FormatSkipped(rootDir string, skipped []search.FileResult) string {
	if len(skipped) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("\nSkipped %d files:\n", len(skipped)))
	for _, s := range skipped {
		builder.WriteString(fmt.Sprintf("  %s (%s)\n", relativePath(rootDir, s.Path), s.Reason))
	}
	return builder.String()
}

// FormatReport renders a generated report: the Markdown narrative followed by the JSON object.
func FormatReport(r *report.Report) (string, error) {
	data, err := r.IndentedJSON()
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	if r.Markdown != "" {
		builder.WriteString(r.Markdown)
		builder.WriteString("\n\n")
	}
	builder.WriteString("```json\n")
	builder.Write(data)
	builder.WriteString("```\n")
	return builder.String(), nil
}

func formatKeywords(result *search.Result) string {
	if result == nil || len(result.Keywords) == 0 {
		return "none"
	}
	return strings.Join(result.Keywords, ", ")
}

func relativePath(rootDir, path string) string {
	rel, err := filepath.Rel(rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

package snippet

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lexandro/bugreport-agent/language"
	"github.com/lexandro/bugreport-agent/search"
)

// DefaultContextLines is the number of lines shown on each side of a match.
const DefaultContextLines = 3

// Snippet is a block of source lines around a match.
type Snippet struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"` // 1-based, inclusive
	EndLine   int    `json:"endLine"`   // 1-based, inclusive
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"` // Markdown fence identifier
}

// Reader extracts context windows around matched lines.
type Reader struct {
	contextLines int
	logger       *slog.Logger
}

// NewReader creates a Reader. Negative contextLines are treated as zero.
func NewReader(contextLines int, logger *slog.Logger) *Reader {
	if contextLines < 0 {
		contextLines = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{contextLines: contextLines, logger: logger}
}

// ContextLines returns the window radius.
func (r *Reader) ContextLines() int {
	return r.contextLines
}

// ReadSnippets returns one snippet per readable match, in match order.
// Files that cannot be read, or matches past the end of a file, are reported as skipped.
func (r *Reader) ReadSnippets(matches []search.Match) ([]Snippet, []search.FileResult) {
	snippets := make([]Snippet, 0, len(matches))
	var skipped []search.FileResult

	for _, m := range matches {
		s, skip := r.read(m.File, m.Line)
		if skip != nil {
			r.logger.Debug("skipped snippet", "path", m.File, "line", m.Line, "reason", skip.Reason, "error", skip.Err)
			skipped = append(skipped, *skip)
			continue
		}
		snippets = append(snippets, s)
	}
	return snippets, skipped
}

// ReadWindow reads the window around a single line of a file.
func (r *Reader) ReadWindow(path string, line int) (Snippet, error) {
	s, skip := r.read(path, line)
	if skip != nil {
		if skip.Err != nil {
			return Snippet{}, fmt.Errorf("reading %s: %w", path, skip.Err)
		}
		return Snippet{}, fmt.Errorf("reading %s: line %d %s", path, line, strings.ReplaceAll(string(skip.Reason), "_", " "))
	}
	return s, nil
}

func (r *Reader) read(path string, line int) (Snippet, *search.FileResult) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snippet{}, &search.FileResult{Path: path, Reason: search.SkipUnreadable, Err: err}
	}
	lines := language.SplitLines(language.DecodeText(data))
	if line < 1 || line > len(lines) {
		return Snippet{}, &search.FileResult{Path: path, Reason: search.SkipOutOfRange}
	}

	start, end := Window(line, len(lines), r.contextLines)
	return Snippet{
		File:      path,
		StartLine: start,
		EndLine:   end,
		Text:      strings.Join(lines[start-1:end], ""),
		Language:  language.FenceLanguage(path),
	}, nil
}

// Window returns the inclusive 1-based range [max(1, line-context), min(lineCount, line+context)].
// line is clamped into [1, lineCount] first, so for lineCount >= 1 the result always
// satisfies 1 <= start <= end <= lineCount.
func Window(line, lineCount, context int) (start, end int) {
	if lineCount < 1 {
		return 0, 0
	}
	if context < 0 {
		context = 0
	}
	line = max(1, min(line, lineCount))
	start = max(1, line-context)
	end = min(lineCount, line+context)
	return start, end
}

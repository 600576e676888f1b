package language

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSourceExtensions is the set of file extensions searched when none are configured.
var DefaultSourceExtensions = []string{".py", ".js", ".ts", ".java", ".go", ".rb"}

// SourceMatcher decides whether a file name belongs to the recognized source set.
// Extensions are compiled into a single doublestar pattern such as "*.{py,js,go}".
type SourceMatcher struct {
	pattern    string
	extensions []string
}

// NewSourceMatcher builds a matcher for the given extensions ("go", ".go" and "*.go" are all accepted).
// An empty list falls back to DefaultSourceExtensions.
func NewSourceMatcher(extensions []string) (*SourceMatcher, error) {
	if len(extensions) == 0 {
		extensions = DefaultSourceExtensions
	}

	normalized := make([]string, 0, len(extensions))
	seen := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		ext = strings.TrimPrefix(ext, "*")
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("no usable source extensions in %v", extensions)
	}

	pattern := "*." + normalized[0]
	if len(normalized) > 1 {
		pattern = "*.{" + strings.Join(normalized, ",") + "}"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid source extension pattern: %s", pattern)
	}

	dotted := make([]string, len(normalized))
	for i, ext := range normalized {
		dotted[i] = "." + ext
	}
	return &SourceMatcher{pattern: pattern, extensions: dotted}, nil
}

// IsSource reports whether the base name of path ends in one of the configured extensions.
// Matching is case-sensitive, like a plain suffix check.
func (m *SourceMatcher) IsSource(path string) bool {
	matched, err := doublestar.Match(m.pattern, filepath.Base(path))
	return err == nil && matched
}

// Extensions returns the configured extensions with a leading dot.
func (m *SourceMatcher) Extensions() []string {
	out := make([]string, len(m.extensions))
	copy(out, m.extensions)
	return out
}

// Pattern returns the compiled doublestar pattern.
func (m *SourceMatcher) Pattern() string {
	return m.pattern
}

package watcher

import (
	"path/filepath"
	"strings"
)

// reportSuffixes mark files written next to processed feedback.
var reportSuffixes = []string{".report.md", ".report.json"}

// FeedbackFilter accepts feedback files in an inbox: plain text and Markdown,
// excluding hidden files, editor backups and generated reports.
type FeedbackFilter struct {
	Extensions []string // lower-case, with leading dot
}

// NewFeedbackFilter accepts .txt and .md files.
func NewFeedbackFilter() *FeedbackFilter {
	return &FeedbackFilter{Extensions: []string{".txt", ".md"}}
}

// ShouldIgnoreDir skips hidden directories.
func (f *FeedbackFilter) ShouldIgnoreDir(absolutePath string) bool {
	return strings.HasPrefix(filepath.Base(absolutePath), ".")
}

// ShouldIgnore reports whether a file is not a feedback file.
func (f *FeedbackFilter) ShouldIgnore(absolutePath string) bool {
	name := strings.ToLower(filepath.Base(absolutePath))
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return true
	}
	for _, suffix := range reportSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	ext := filepath.Ext(name)
	for _, allowed := range f.Extensions {
		if ext == allowed {
			return false
		}
	}
	return true
}

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexandro/bugreport-agent/atomicfile"
	"github.com/lexandro/bugreport-agent/config"
)

// Paths names the two output artifacts.
type Paths struct {
	JSON     string
	Markdown string
}

// DirPaths returns report.json and report.md inside dir.
func DirPaths(dir string) Paths {
	return Paths{
		JSON:     filepath.Join(dir, config.ReportJSONFile),
		Markdown: filepath.Join(dir, config.ReportMarkdownFile),
	}
}

// SiblingPaths returns <file>.report.json and <file>.report.md next to a feedback file.
func SiblingPaths(feedbackFile string) Paths {
	base := strings.TrimSuffix(feedbackFile, filepath.Ext(feedbackFile))
	return Paths{
		JSON:     base + ".report.json",
		Markdown: base + ".report.md",
	}
}

// WriteFiles writes report.json and report.md into dir, creating it if needed.
func WriteFiles(dir string, r *Report) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	paths := DirPaths(dir)
	return paths, Write(paths, r)
}

// Write replaces both artifacts. Each file is written to a temp file and renamed into place.
func Write(paths Paths, r *Report) error {
	data, err := r.IndentedJSON()
	if err != nil {
		return err
	}
	if err := atomicfile.Write(paths.JSON, data, 0o644); err != nil {
		return err
	}
	return atomicfile.Write(paths.Markdown, []byte(r.Markdown), 0o644)
}

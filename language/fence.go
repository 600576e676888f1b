package language

import (
	"path/filepath"
	"strings"
)

// fenceByExtension maps extensions (without dot) to Markdown code fence identifiers.
var fenceByExtension = map[string]string{
	"go":    "go",
	"py":    "python",
	"pyi":   "python",
	"js":    "javascript",
	"jsx":   "jsx",
	"mjs":   "javascript",
	"cjs":   "javascript",
	"ts":    "typescript",
	"tsx":   "tsx",
	"java":  "java",
	"kt":    "kotlin",
	"rb":    "ruby",
	"rs":    "rust",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"php":   "php",
	"swift": "swift",
	"scala": "scala",
	"sh":    "bash",
	"sql":   "sql",
	"vue":   "vue",
}

// FenceLanguage returns the code fence identifier for a file, or "" when unknown.
func FenceLanguage(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	return fenceByExtension[ext]
}

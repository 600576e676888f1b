package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// VCSDirs are version-control metadata directories that are never searched.
var VCSDirs = []string{".git", ".hg", ".svn"}

// Matcher determines whether a path is excluded from the code search walk.
// Version-control directories are always skipped. .gitignore rules, custom
// exclude patterns and the file size limit only apply when configured.
type Matcher struct {
	rootDir          string
	gitIgnore        gitignore.GitIgnore
	excludePatterns  []string
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir string
	// UseGitignore loads <RootDir>/.gitignore and honours its rules.
	UseGitignore bool
	// ExcludePatterns are doublestar patterns matched against the
	// slash-separated path relative to RootDir and against the base name.
	ExcludePatterns []string
	// MaxFileSizeBytes skips larger files. Zero or negative means no limit.
	MaxFileSizeBytes int64
}

// NewMatcher creates an ignore matcher for the given root.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:          options.RootDir,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}

	for _, pattern := range options.ExcludePatterns {
		pattern = strings.ReplaceAll(strings.TrimSpace(pattern), "\\", "/")
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			continue
		}
		matcher.excludePatterns = append(matcher.excludePatterns, pattern)
	}

	if options.UseGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}

	return matcher
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	dirName := filepath.Base(absolutePath)
	for _, vcs := range VCSDirs {
		if dirName == vcs {
			return true
		}
	}
	return m.matchesRules(absolutePath, true)
}

// ShouldIgnore returns true if the given file should be excluded from the search.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	return m.matchesRules(absolutePath, false)
}

// IsFileTooLarge returns true if the file exceeds the configured size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return m.maxFileSizeBytes > 0 && fileSize > m.maxFileSizeBytes
}

// ExcludePatterns returns the valid custom patterns in effect.
func (m *Matcher) ExcludePatterns() []string {
	return m.excludePatterns
}

func (m *Matcher) matchesRules(absolutePath string, isDir bool) bool {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	// Relative() does not require the path to exist on disk
	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	baseName := filepath.Base(absolutePath)
	for _, pattern := range m.excludePatterns {
		if matched, _ := doublestar.Match(pattern, relativePath); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, baseName); matched {
			return true
		}
	}
	return false
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Returns nil when the file does not exist.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}

package config

import (
	"github.com/spf13/pflag"
)

// Flags holds CLI flag values until Load decides which of them were set explicitly.
type Flags struct {
	fs   *pflag.FlagSet
	vals *Config
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	v := Defaults()

	fs.StringVarP(&v.RepoPath, "repo-path", "r", v.RepoPath, "Path to codebase (local git repo or directory, defaults to current directory)")
	fs.StringVarP(&v.Feedback, "feedback", "f", "", "User feedback text or path to feedback file")
	fs.StringVarP(&v.OutDir, "out-dir", "o", v.OutDir, "Directory for report.json and report.md")
	fs.IntVar(&v.TopN, "top-n", v.TopN, "Number of top code snippets to retrieve")
	fs.IntVar(&v.ContextLines, "context", v.ContextLines, "Lines of context before and after each match")

	fs.StringSliceVarP(&v.Extensions, "extensions", "e", nil, "Source file extensions to search (default: py, js, ts, java, go, rb)")
	fs.StringArrayVar(&v.Exclude, "exclude", nil, "Extra doublestar exclude pattern (repeatable)")
	fs.BoolVar(&v.UseGitignore, "gitignore", false, "Skip files matched by the repository .gitignore")
	fs.Int64Var(&v.MaxFileSizeBytes, "max-file-size", 0, "Skip files larger than this many bytes (0: no limit)")
	fs.BoolVar(&v.SkipBinary, "skip-binary", false, "Skip source files that contain NUL bytes in their first 512 bytes")

	fs.StringVar(&v.Provider, "provider", v.Provider, "LLM provider: openai|anthropic|gemini")
	fs.StringVar(&v.Model, "model", "", "LLM model name (default depends on provider)")
	fs.StringVar(&v.OpenAIBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	fs.DurationVar(&v.Timeout, "timeout", 0, "Deadline for the whole run, e.g. 2m (0: none)")

	fs.StringVar(&v.LogLevel, "log-level", v.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&v.LogFile, "log-file", "", "Log file path (default: stderr)")

	fs.BoolVarP(&v.CreateLinear, "create-linear", "l", false, "Create a Linear issue (requires LINEAR_API_KEY, optional LINEAR_TEAM_ID)")
	fs.BoolVar(&v.GitHubDispatch, "github-dispatch", false, "Send a GitHub repository_dispatch event (requires GITHUB_* variables)")
	fs.BoolVar(&v.Upload, "upload", false, "Upload the report files to S3-compatible storage (requires ARTIFACT_S3_* variables)")

	return &Flags{fs: fs, vals: v}
}

// RepoPath returns the repository path given on the command line, or the default.
func (f *Flags) RepoPath() string {
	return f.vals.RepoPath
}

// apply copies every explicitly set flag onto c.
func (f *Flags) apply(c *Config) {
	changed := f.fs.Changed
	v := f.vals

	if changed("repo-path") {
		c.RepoPath = v.RepoPath
	}
	if changed("feedback") {
		c.Feedback = v.Feedback
	}
	if changed("out-dir") {
		c.OutDir = v.OutDir
	}
	if changed("top-n") {
		c.TopN = v.TopN
	}
	if changed("context") {
		c.ContextLines = v.ContextLines
	}
	if changed("extensions") {
		c.Extensions = v.Extensions
	}
	if changed("exclude") {
		c.Exclude = append(c.Exclude, v.Exclude...)
	}
	if changed("gitignore") {
		c.UseGitignore = v.UseGitignore
	}
	if changed("max-file-size") {
		c.MaxFileSizeBytes = v.MaxFileSizeBytes
	}
	if changed("skip-binary") {
		c.SkipBinary = v.SkipBinary
	}
	if changed("provider") {
		c.Provider = v.Provider
	}
	if changed("model") {
		c.Model = v.Model
	}
	if changed("base-url") {
		c.OpenAIBaseURL = v.OpenAIBaseURL
	}
	if changed("timeout") {
		c.Timeout = v.Timeout
	}
	if changed("log-level") {
		c.LogLevel = v.LogLevel
	}
	if changed("log-file") {
		c.LogFile = v.LogFile
	}
	c.CreateLinear = v.CreateLinear
	c.GitHubDispatch = v.GitHubDispatch
	c.Upload = v.Upload
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectFileName is the optional per-repository settings file.
const ProjectFileName = ".bugreport.toml"

// projectFile mirrors the layout of .bugreport.toml.
type projectFile struct {
	Search searchSection `toml:"search"`
	LLM    llmSection    `toml:"llm"`
	Output outputSection `toml:"output"`
}

type searchSection struct {
	TopN        *int     `toml:"top_n"`
	Context     *int     `toml:"context"`
	Extensions  []string `toml:"extensions"`
	Exclude     []string `toml:"exclude"`
	Gitignore   *bool    `toml:"gitignore"`
	MaxFileSize *int64   `toml:"max_file_size"`
	SkipBinary  *bool    `toml:"skip_binary"`
}

type llmSection struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

type outputSection struct {
	Dir string `toml:"dir"`
}

// ApplyProjectFile overlays <repoPath>/.bugreport.toml when it exists.
// It returns the path that was loaded, or "" when there was none.
func (c *Config) ApplyProjectFile(repoPath string) (string, error) {
	path := filepath.Join(repoPath, ProjectFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}

	var pf projectFile
	meta, err := toml.DecodeFile(path, &pf)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return "", fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	if pf.Search.TopN != nil {
		c.TopN = *pf.Search.TopN
	}
	if pf.Search.Context != nil {
		c.ContextLines = *pf.Search.Context
	}
	if len(pf.Search.Extensions) > 0 {
		c.Extensions = pf.Search.Extensions
	}
	if len(pf.Search.Exclude) > 0 {
		c.Exclude = append(c.Exclude, pf.Search.Exclude...)
	}
	if pf.Search.Gitignore != nil {
		c.UseGitignore = *pf.Search.Gitignore
	}
	if pf.Search.MaxFileSize != nil {
		c.MaxFileSizeBytes = *pf.Search.MaxFileSize
	}
	if pf.Search.SkipBinary != nil {
		c.SkipBinary = *pf.Search.SkipBinary
	}
	if pf.LLM.Provider != "" {
		c.Provider = pf.LLM.Provider
	}
	if pf.LLM.Model != "" {
		c.Model = pf.LLM.Model
	}
	if pf.LLM.BaseURL != "" {
		c.OpenAIBaseURL = pf.LLM.BaseURL
	}
	if pf.Output.Dir != "" {
		c.OutDir = pf.Output.Dir
	}
	return path, nil
}

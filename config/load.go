package config

import (
	"strings"
)

// Load builds the Config from, in increasing precedence: defaults, the repository's
// .bugreport.toml, the environment (after loading .env), and explicitly set flags.
// The result is validated before it is returned.
func Load(flags *Flags, lookup LookupFunc) (*Config, error) {
	cfg := Defaults()
	cfg.RepoPath = flags.RepoPath()

	projectFile, err := cfg.ApplyProjectFile(cfg.RepoPath)
	if err != nil {
		return nil, err
	}
	cfg.ProjectFile = projectFile

	cfg.ApplyEnv(lookup)
	flags.apply(cfg)

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is returned when a feature needs a credential that is not configured.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrInvalidConfig is returned by Validate for unusable settings.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Output file names written by the report pipeline.
const (
	ReportJSONFile     = "report.json"
	ReportMarkdownFile = "report.md"
)

// defaultModels holds the model used when none is configured.
var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-3.5-turbo",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderGemini:    "gemini-2.5-flash",
}

// apiKeyEnv lists the environment variables consulted for each provider, in order.
var apiKeyEnv = map[string][]string{
	ProviderOpenAI:    {"OPENAI_API_KEY"},
	ProviderAnthropic: {"ANTHROPIC_API_KEY"},
	ProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Config is built once at startup and passed by pointer to every collaborator.
type Config struct {
	RepoPath string
	Feedback string // literal text or a path to a text file
	OutDir   string

	TopN         int
	ContextLines int

	Extensions       []string
	Exclude          []string
	UseGitignore     bool
	MaxFileSizeBytes int64
	SkipBinary       bool

	Provider      string
	Model         string
	OpenAIBaseURL string
	Timeout       time.Duration // zero means no deadline

	LogLevel string
	LogFile  string

	CreateLinear   bool
	GitHubDispatch bool
	Upload         bool

	Linear   LinearConfig
	GitHub   GitHubConfig
	Artifact ArtifactConfig

	// ProjectFile is the .bugreport.toml that was applied, if any.
	ProjectFile string

	apiKeys map[string]string
}

// LinearConfig configures the Linear issue sink.
type LinearConfig struct {
	APIKey   string
	TeamID   string
	Endpoint string
}

// GitHubConfig configures the GitHub repository dispatch sink.
type GitHubConfig struct {
	Owner  string
	Repo   string
	Token  string
	APIURL string
}

// ArtifactConfig configures upload of report artifacts to S3-compatible storage.
type ArtifactConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to attempt an upload.
func (a ArtifactConfig) Enabled() bool {
	return a.Endpoint != "" && a.Bucket != ""
}

// Defaults returns a Config with the built-in defaults.
func Defaults() *Config {
	return &Config{
		RepoPath:     ".",
		OutDir:       ".",
		TopN:         5,
		ContextLines: 3,
		Provider:     ProviderOpenAI,
		LogLevel:     "info",
		Linear: LinearConfig{
			Endpoint: "https://api.linear.app/graphql",
		},
		GitHub: GitHubConfig{
			APIURL: "https://api.github.com",
		},
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Prefix: "bug-reports",
			UseSSL: true,
		},
		apiKeys: make(map[string]string),
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	info, err := os.Stat(c.RepoPath)
	if err != nil {
		return fmt.Errorf("%w: repo path %q: %v", ErrInvalidConfig, c.RepoPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: repo path %q is not a directory", ErrInvalidConfig, c.RepoPath)
	}
	if c.TopN < 1 {
		return fmt.Errorf("%w: top-n must be at least 1, got %d", ErrInvalidConfig, c.TopN)
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("%w: context must not be negative, got %d", ErrInvalidConfig, c.ContextLines)
	}
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("%w: unknown provider %q (want openai, anthropic or gemini)", ErrInvalidConfig, c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ResolvedModel returns the configured model or the provider default.
func (c *Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() (string, error) {
	key := strings.TrimSpace(c.apiKeys[c.Provider])
	if key == "" {
		names := apiKeyEnv[c.Provider]
		if len(names) == 0 {
			return "", fmt.Errorf("%w: unknown provider %q", ErrMissingAPIKey, c.Provider)
		}
		return "", fmt.Errorf("%w: %s environment variable is not set", ErrMissingAPIKey, strings.Join(names, " or "))
	}
	return key, nil
}

// SetAPIKey overrides the credential for a provider.
func (c *Config) SetAPIKey(provider, key string) {
	if c.apiKeys == nil {
		c.apiKeys = make(map[string]string)
	}
	c.apiKeys[provider] = key
}

// RequireLinear checks the Linear sink credential.
func (c *Config) RequireLinear() error {
	if strings.TrimSpace(c.Linear.APIKey) == "" {
		return fmt.Errorf("%w: LINEAR_API_KEY must be set to create a Linear issue", ErrMissingAPIKey)
	}
	return nil
}

// RequireGitHub checks the GitHub dispatch sink settings.
func (c *Config) RequireGitHub() error {
	if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
		return fmt.Errorf("%w: GITHUB_REPO_OWNER and GITHUB_REPO_NAME must be set", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.GitHub.Token) == "" {
		return fmt.Errorf("%w: GITHUB_DISPATCH_TOKEN must be set", ErrMissingAPIKey)
	}
	return nil
}

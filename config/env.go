package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads the given env files, or .env in the working directory when none
// are given. Variables already set in the process environment win. A missing file
// is not an error; a file that cannot be parsed is.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays settings found in the environment.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	for provider, names := range apiKeyEnv {
		for _, name := range names {
			if v := get(name); v != "" {
				c.SetAPIKey(provider, v)
				break
			}
		}
	}

	if v := get("BUGREPORT_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := get("BUGREPORT_MODEL"); v != "" {
		c.Model = v
	}
	if v := get("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}

	if v := get("LINEAR_API_KEY"); v != "" {
		c.Linear.APIKey = v
	}
	if v := get("LINEAR_TEAM_ID"); v != "" {
		c.Linear.TeamID = v
	}
	if v := get("LINEAR_API_URL"); v != "" {
		c.Linear.Endpoint = v
	}

	if v := get("GITHUB_REPO_OWNER"); v != "" {
		c.GitHub.Owner = v
	}
	if v := get("GITHUB_REPO_NAME"); v != "" {
		c.GitHub.Repo = v
	}
	if v := get("GITHUB_DISPATCH_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := get("GITHUB_API_URL"); v != "" {
		c.GitHub.APIURL = v
	}

	c.Artifact.Endpoint = firstNonEmpty(get("ARTIFACT_S3_ENDPOINT"), c.Artifact.Endpoint)
	c.Artifact.Region = firstNonEmpty(get("ARTIFACT_S3_REGION"), c.Artifact.Region)
	c.Artifact.AccessKey = firstNonEmpty(get("ARTIFACT_S3_ACCESS_KEY"), get("MINIO_ROOT_USER"), c.Artifact.AccessKey)
	c.Artifact.SecretKey = firstNonEmpty(get("ARTIFACT_S3_SECRET_KEY"), get("MINIO_ROOT_PASSWORD"), c.Artifact.SecretKey)
	c.Artifact.Bucket = firstNonEmpty(get("ARTIFACT_S3_BUCKET"), c.Artifact.Bucket)
	c.Artifact.Prefix = firstNonEmpty(get("ARTIFACT_S3_PREFIX"), c.Artifact.Prefix)
	if v := get("ARTIFACT_S3_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Artifact.UseSSL = b
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

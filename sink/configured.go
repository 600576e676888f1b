package sink

import (
	"log/slog"

	"github.com/lexandro/bugreport-agent/config"
)

// Configured builds the sinks enabled in cfg. A sink whose settings are incomplete is
// left out and its configuration error returned, so the caller can warn and continue.
func Configured(cfg *config.Config, logger *slog.Logger) ([]Sink, []error) {
	var sinks []Sink
	var errs []error

	if cfg.CreateLinear {
		if err := cfg.RequireLinear(); err != nil {
			errs = append(errs, err)
		} else {
			sinks = append(sinks, NewLinear(LinearOptions{
				APIKey:   cfg.Linear.APIKey,
				TeamID:   cfg.Linear.TeamID,
				Endpoint: cfg.Linear.Endpoint,
				Logger:   logger,
			}))
		}
	}
	if cfg.GitHubDispatch {
		if err := cfg.RequireGitHub(); err != nil {
			errs = append(errs, err)
		} else {
			sinks = append(sinks, NewGitHubDispatch(GitHubOptions{
				Owner:  cfg.GitHub.Owner,
				Repo:   cfg.GitHub.Repo,
				Token:  cfg.GitHub.Token,
				APIURL: cfg.GitHub.APIURL,
			}))
		}
	}
	return sinks, errs
}

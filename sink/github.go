package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
)

// DispatchEventType is the repository_dispatch event sent for each report.
const DispatchEventType = "website-bug-report"

// GitHubOptions configures the repository dispatch sink.
type GitHubOptions struct {
	Owner      string
	Repo       string
	Token      string
	APIURL     string // default https://api.github.com
	HTTPClient *http.Client
}

// GitHubDispatch hands the report to a GitHub Actions workflow through a
// repository_dispatch event. GitHub returns no issue for it, so Result is empty.
type GitHubDispatch struct {
	owner  string
	repo   string
	client *github.Client
	err    error
}

func NewGitHubDispatch(opts GitHubOptions) *GitHubDispatch {
	client := github.NewClient(opts.HTTPClient).WithAuthToken(opts.Token)
	g := &GitHubDispatch{owner: opts.Owner, repo: opts.Repo, client: client}
	if opts.APIURL != "" {
		base, err := url.Parse(strings.TrimRight(opts.APIURL, "/") + "/")
		if err != nil {
			g.err = fmt.Errorf("parsing GitHub API URL: %w", err)
		} else {
			client.BaseURL = base
		}
	}
	return g
}

func (g *GitHubDispatch) Name() string { return "github-dispatch" }

type dispatchPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (g *GitHubDispatch) CreateIssue(ctx context.Context, issue Issue) (Result, error) {
	if g.err != nil {
		return Result{}, g.err
	}
	if issue.Title == "" || issue.Description == "" {
		return Result{}, fmt.Errorf("github dispatch: title and description are required")
	}
	payload, err := json.Marshal(dispatchPayload{Title: issue.Title, Description: issue.Description})
	if err != nil {
		return Result{}, fmt.Errorf("marshaling dispatch payload: %w", err)
	}
	raw := json.RawMessage(payload)
	_, _, err = g.client.Repositories.Dispatch(ctx, g.owner, g.repo, github.DispatchRequestOptions{
		EventType:     DispatchEventType,
		ClientPayload: &raw,
	})
	if err != nil {
		return Result{}, fmt.Errorf("github dispatch failed: %w", err)
	}
	return Result{}, nil
}

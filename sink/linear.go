package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shurcooL/graphql"
)

// DefaultLinearEndpoint is Linear's GraphQL API.
const DefaultLinearEndpoint = "https://api.linear.app/graphql"

// LinearOptions configures the Linear sink. TeamID may be empty, in which case the
// first team visible to the API key is used.
type LinearOptions struct {
	APIKey     string
	TeamID     string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Linear creates issues through Linear's GraphQL API.
type Linear struct {
	teamID string
	client *graphql.Client
	logger *slog.Logger
}

func NewLinear(opts LinearOptions) *Linear {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultLinearEndpoint
	}
	hc := http.Client{}
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	}
	hc.Transport = bearerTransport{token: opts.APIKey, base: hc.Transport}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Linear{
		teamID: opts.TeamID,
		client: graphql.NewClient(opts.Endpoint, &hc),
		logger: logger,
	}
}

func (l *Linear) Name() string { return "linear" }

// IssueCreateInput mirrors the GraphQL input type of the same name; the
// client derives the variable type from the Go type name.
type IssueCreateInput struct {
	TeamID      string `json:"teamId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateIssue resolves the team if needed and runs the issueCreate mutation.
func (l *Linear) CreateIssue(ctx context.Context, issue Issue) (Result, error) {
	teamID := l.teamID
	if teamID == "" {
		id, name, err := l.FirstTeam(ctx)
		if err != nil {
			return Result{}, err
		}
		l.logger.Info("using Linear team", "team", name, "id", id)
		teamID = id
	}

	var mutation struct {
		IssueCreate struct {
			Success bool `graphql:"success"`
			Issue   *struct {
				ID  string `graphql:"id"`
				URL string `graphql:"url"`
			} `graphql:"issue"`
		} `graphql:"issueCreate(input: $input)"`
	}
	vars := map[string]any{
		"input": IssueCreateInput{TeamID: teamID, Title: issue.Title, Description: issue.Description},
	}
	if err := l.client.Mutate(ctx, &mutation, vars); err != nil {
		return Result{}, fmt.Errorf("creating Linear issue: %w", err)
	}
	created := mutation.IssueCreate.Issue
	if created == nil || created.URL == "" {
		return Result{}, fmt.Errorf("linear: %w", ErrNoIssueURL)
	}
	return Result{ID: created.ID, URL: created.URL}, nil
}

// FirstTeam returns the first team visible to the API key.
func (l *Linear) FirstTeam(ctx context.Context) (id, name string, err error) {
	var query struct {
		Viewer struct {
			Teams struct {
				Nodes []struct {
					ID   string `graphql:"id"`
					Name string `graphql:"name"`
				} `graphql:"nodes"`
			} `graphql:"teams"`
		} `graphql:"viewer"`
	}
	if err := l.client.Query(ctx, &query, nil); err != nil {
		return "", "", fmt.Errorf("fetching Linear teams: %w", err)
	}
	nodes := query.Viewer.Teams.Nodes
	if len(nodes) == 0 {
		return "", "", ErrNoTeams
	}
	return nodes[0].ID, nodes[0].Name, nil
}

// bearerTransport adds Linear's API key to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return base.RoundTrip(req)
}

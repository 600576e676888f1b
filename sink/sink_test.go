package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lexandro/bugreport-agent/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_IssueTitle(t *testing.T) {
	long := strings.Repeat("x", 100)
	tests := []struct {
		feedback string
		want     string
	}{
		{"  Login button does nothing\nmore details", "Bug: Login button does nothing"},
		{"short", "Bug: short"},
		{strings.Repeat("y", 80), "Bug: " + strings.Repeat("y", 80)},
		{long, "Bug: " + strings.Repeat("x", 77) + "..."},
		{"windows line\r\nnext", "Bug: windows line"},
		{"   ", "Bug: untitled report"},
	}
	for _, tt := range tests {
		if got := IssueTitle(tt.feedback); got != tt.want {
			t.Errorf("IssueTitle(%q) = %q, want %q", tt.feedback, got, tt.want)
		}
	}
}

func Test_IssueTitle_CountsRunes(t *testing.T) {
	title := IssueTitle(strings.Repeat("é", 81))
	if got := len([]rune(strings.TrimPrefix(title, "Bug: "))); got != 80 {
		t.Errorf("expected 80 runes after truncation, got %d", got)
	}
}

type graphQLCapture struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func Test_Linear_DiscoversFirstTeam(t *testing.T) {
	var requests []graphQLCapture
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var req graphQLCapture
		json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)
		if strings.Contains(req.Query, "viewer") {
			io.WriteString(w, `{"data":{"viewer":{"teams":{"nodes":[{"id":"team-a","name":"Alpha"},{"id":"team-b","name":"Beta"}]}}}}`)
			return
		}
		io.WriteString(w, `{"data":{"issueCreate":{"success":true,"issue":{"id":"iss-1","url":"https://linear.app/acme/issue/ACM-1"}}}}`)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "lin_key", Endpoint: srv.URL, Logger: testLogger()})
	res, err := linear.CreateIssue(context.Background(), NewIssue("Crash on save", "# Bug Report"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.URL != "https://linear.app/acme/issue/ACM-1" || res.ID != "iss-1" {
		t.Errorf("unexpected result %+v", res)
	}
	if auth != "Bearer lin_key" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if len(requests) != 2 {
		t.Fatalf("expected team query then mutation, got %d requests", len(requests))
	}
	input, _ := requests[1].Variables["input"].(map[string]any)
	if input["teamId"] != "team-a" {
		t.Errorf("expected first team to be used, got %v", input["teamId"])
	}
	if input["title"] != "Bug: Crash on save" || input["description"] != "# Bug Report" {
		t.Errorf("unexpected issue input %v", input)
	}
	if !strings.Contains(requests[1].Query, "$input:IssueCreateInput!") || !strings.Contains(requests[1].Query, "issueCreate(input: $input)") {
		t.Errorf("unexpected mutation %q", requests[1].Query)
	}
}

func Test_Linear_ConfiguredTeamSkipsDiscovery(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, `{"data":{"issueCreate":{"success":true,"issue":{"id":"1","url":"u"}}}}`)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "k", TeamID: "team-x", Endpoint: srv.URL})
	if _, err := linear.CreateIssue(context.Background(), NewIssue("f", "m")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected only the mutation, got %d calls", calls)
	}
}

func Test_Linear_NoTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"viewer":{"teams":{"nodes":[]}}}}`)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "k", Endpoint: srv.URL})
	_, err := linear.CreateIssue(context.Background(), NewIssue("f", "m"))
	if !errors.Is(err, ErrNoTeams) {
		t.Errorf("expected ErrNoTeams, got %v", err)
	}
}

func Test_Linear_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"issueCreate":{"success":false,"issue":null}}}`)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "k", TeamID: "t", Endpoint: srv.URL})
	_, err := linear.CreateIssue(context.Background(), NewIssue("f", "m"))
	if !errors.Is(err, ErrNoIssueURL) {
		t.Errorf("expected ErrNoIssueURL, got %v", err)
	}
}

func Test_Linear_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":[{"message":"Authentication required"}]}`)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "k", TeamID: "t", Endpoint: srv.URL})
	_, err := linear.CreateIssue(context.Background(), NewIssue("f", "m"))
	if err == nil || !strings.Contains(err.Error(), "Authentication required") {
		t.Errorf("expected graphql error, got %v", err)
	}
}

func Test_GitHubDispatch_SendsEvent(t *testing.T) {
	var path, accept, auth string
	var body struct {
		EventType     string          `json:"event_type"`
		ClientPayload dispatchPayload `json:"client_payload"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		accept = r.Header.Get("Accept")
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gh := NewGitHubDispatch(GitHubOptions{Owner: "acme", Repo: "web", Token: "ghp_x", APIURL: srv.URL})
	if _, err := gh.CreateIssue(context.Background(), NewIssue("Broken link", "# Report")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/repos/acme/web/dispatches" {
		t.Errorf("unexpected path %q", path)
	}
	if accept != "application/vnd.github.v3+json" || auth != "Bearer ghp_x" {
		t.Errorf("unexpected headers accept=%q auth=%q", accept, auth)
	}
	if body.EventType != DispatchEventType || body.ClientPayload.Title != "Bug: Broken link" || body.ClientPayload.Description != "# Report" {
		t.Errorf("unexpected body %+v", body)
	}
}

func Test_Linear_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	linear := NewLinear(LinearOptions{APIKey: "k", TeamID: "t", Endpoint: srv.URL})
	_, err := linear.CreateIssue(context.Background(), NewIssue("f", "m"))
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status error, got %v", err)
	}
}

func Test_GitHubDispatch_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not Found"}`)
	}))
	defer srv.Close()

	gh := NewGitHubDispatch(GitHubOptions{Owner: "acme", Repo: "web", Token: "t", APIURL: srv.URL})
	_, err := gh.CreateIssue(context.Background(), NewIssue("f", "m"))
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func Test_Configured(t *testing.T) {
	cfg := config.Defaults()
	cfg.CreateLinear = true
	cfg.GitHubDispatch = true
	cfg.Linear.APIKey = "k"

	sinks, errs := Configured(cfg, testLogger())
	if len(sinks) != 1 || sinks[0].Name() != "linear" {
		t.Errorf("expected only the linear sink, got %v", sinks)
	}
	if len(errs) != 1 || !errors.Is(errs[0], config.ErrInvalidConfig) {
		t.Errorf("expected github configuration error, got %v", errs)
	}
}

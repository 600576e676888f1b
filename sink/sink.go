package sink

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoTeams is returned when Linear team discovery finds no team for the API key.
	ErrNoTeams = errors.New("no Linear teams found for the authenticated user")
	// ErrNoIssueURL is returned when the tracker accepted the request but returned no issue URL.
	ErrNoIssueURL = errors.New("response did not include issue URL")
)

const (
	titlePrefix   = "Bug: "
	maxTitleRunes = 80
	untitled      = "untitled report"
)

// Issue is what gets filed.
type Issue struct {
	Title       string
	Description string // Markdown
}

// Result identifies the created issue. Fields are empty when the tracker returns nothing.
type Result struct {
	ID  string
	URL string
}

// Sink files an issue in an external tracker.
type Sink interface {
	Name() string
	CreateIssue(ctx context.Context, issue Issue) (Result, error)
}

// IssueTitle derives a title from feedback: its first non-empty line after trimming,
// cut to 77 characters plus "..." when longer than 80, prefixed with "Bug: ".
func IssueTitle(feedback string) string {
	trimmed := strings.TrimSpace(feedback)
	line, _, _ := strings.Cut(trimmed, "\n")
	line = strings.TrimRight(line, "\r")
	if line == "" {
		line = untitled
	}
	if runes := []rune(line); len(runes) > maxTitleRunes {
		line = string(runes[:maxTitleRunes-3]) + "..."
	}
	return titlePrefix + line
}

// NewIssue builds the issue for a generated report.
func NewIssue(feedback, markdown string) Issue {
	return Issue{Title: IssueTitle(feedback), Description: markdown}
}

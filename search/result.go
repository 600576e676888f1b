package search

// Match is a single source line containing at least one keyword.
type Match struct {
	File string // Path as produced by the walk (rooted at the search root)
	Line int    // 1-based line number
}

// FileScore is the keyword score of one candidate file.
type FileScore struct {
	Path  string
	Score int
}

// SkipReason explains why a file did not contribute to a result.
type SkipReason string

const (
	SkipUnreadable SkipReason = "unreadable"
	SkipBinary     SkipReason = "binary"
	SkipTooLarge   SkipReason = "too_large"
	SkipIgnored    SkipReason = "ignored"
	SkipOutOfRange SkipReason = "out_of_range"
)

// FileResult records a file that was skipped while searching or reading snippets.
type FileResult struct {
	Path   string
	Reason SkipReason
	Err    error // Underlying error, if any
}

// Result is the outcome of a full search.
type Result struct {
	// Keywords are the terms actually searched for.
	Keywords []string
	// Fallback is set when no file matched the regular keywords and the
	// search was repeated with three-character words included.
	Fallback bool
	// Files are the top-N files by score, highest first.
	Files []FileScore
	// Matches are capped at top-N overall, in file-selection order.
	Matches []Match
	// Scanned counts candidate source files that were read and scored.
	Scanned int
	Skipped []FileResult
}

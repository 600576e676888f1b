package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/bugreport-agent/ignore"
	"github.com/lexandro/bugreport-agent/language"
)

// Options configures a Searcher.
type Options struct {
	RootDir string
	Ignore  *ignore.Matcher         // nil skips only version-control directories
	Sources *language.SourceMatcher // nil uses language.DefaultSourceExtensions
	// SkipBinary leaves out source files whose first bytes contain a NUL.
	// Off by default: a source file is scored however odd its content.
	SkipBinary bool
	Logger     *slog.Logger
}

// Searcher scores the source files under a root directory against feedback keywords.
// It holds no state between calls.
type Searcher struct {
	rootDir    string
	ignore     *ignore.Matcher
	sources    *language.SourceMatcher
	skipBinary bool
	logger     *slog.Logger
}

// NewSearcher creates a Searcher. It fails only if the default source matcher cannot be built.
func NewSearcher(options Options) (*Searcher, error) {
	sources := options.Sources
	if sources == nil {
		var err error
		sources, err = language.NewSourceMatcher(nil)
		if err != nil {
			return nil, err
		}
	}
	matcher := options.Ignore
	if matcher == nil {
		matcher = ignore.NewMatcher(ignore.MatcherOptions{RootDir: options.RootDir})
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Searcher{
		rootDir:    options.RootDir,
		ignore:     matcher,
		sources:    sources,
		skipBinary: options.SkipBinary,
		logger:     logger,
	}, nil
}

// RootDir returns the directory the searcher walks.
func (s *Searcher) RootDir() string {
	return s.rootDir
}

// Search extracts keywords from feedback, selects the topN highest scoring files
// and returns at most topN matching lines from them.
func (s *Searcher) Search(ctx context.Context, feedback string, topN int) (*Result, error) {
	start := time.Now()
	keywords := ExtractKeywords(feedback)

	scores, scanned, skipped, err := s.ScoreFiles(ctx, keywords)
	if err != nil {
		return nil, err
	}

	// Short feedback such as "add function error" often only names the code
	// with a three letter word. Rescore once with those words allowed.
	fallback := false
	if len(scores) == 0 {
		if wider := ExtractFallbackKeywords(feedback); len(wider) > len(keywords) {
			s.logger.Debug("no file matched, retrying with short keywords", "keywords", len(wider))
			keywords = wider
			fallback = true
			scores, scanned, skipped, err = s.ScoreFiles(ctx, keywords)
			if err != nil {
				return nil, err
			}
		}
	}

	topFiles := TopFiles(scores, topN)
	matches, matchSkipped := s.MatchLines(ctx, topFiles, keywords, topN)
	skipped = append(skipped, matchSkipped...)

	s.logger.Info("search complete",
		"keywords", len(keywords),
		"fallback", fallback,
		"scanned", scanned,
		"scored", len(scores),
		"files", len(topFiles),
		"matches", len(matches),
		"skipped", len(skipped),
		"elapsed", time.Since(start),
	)

	return &Result{
		Keywords: keywords,
		Fallback: fallback,
		Files:    topFiles,
		Matches:  matches,
		Scanned:  scanned,
		Skipped:  skipped,
	}, ctx.Err()
}

// ScoreFiles walks the root and scores every source file. The score of a file is the
// sum over keywords of the number of non-overlapping occurrences in its lower-cased text.
// Files scoring zero are left out. Scores are returned in walk order.
func (s *Searcher) ScoreFiles(ctx context.Context, keywords []string) ([]FileScore, int, []FileResult, error) {
	var scores []FileScore
	var skipped []FileResult
	scanned := 0

	info, err := os.Stat(s.rootDir)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("search root: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, nil, fmt.Errorf("search root %s is not a directory", s.rootDir)
	}

	err = filepath.WalkDir(s.rootDir, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.rootDir {
				return err
			}
			skipped = append(skipped, FileResult{Path: path, Reason: SkipUnreadable, Err: err})
			return nil
		}
		if d.IsDir() {
			if path != s.rootDir && s.ignore.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.sources.IsSource(path) {
			return nil
		}
		if s.ignore.ShouldIgnore(path) {
			skipped = append(skipped, FileResult{Path: path, Reason: SkipIgnored})
			return nil
		}

		text, skip := s.readSource(path, d)
		if skip != nil {
			s.logger.Debug("skipped file", "path", path, "reason", skip.Reason, "error", skip.Err)
			skipped = append(skipped, *skip)
			return nil
		}
		scanned++

		score := scoreText(language.Lower(text), keywords)
		if score > 0 {
			scores = append(scores, FileScore{Path: path, Score: score})
		}
		return nil
	})
	if err != nil {
		return nil, scanned, skipped, fmt.Errorf("walking %s: %w", s.rootDir, err)
	}
	return scores, scanned, skipped, nil
}

// TopFiles returns up to n files with the highest score. Files with equal scores
// keep the order in which they were scored. Zero-score entries are never returned.
func TopFiles(scores []FileScore, n int) []FileScore {
	if n <= 0 {
		return nil
	}
	ranked := make([]FileScore, 0, len(scores))
	for _, fs := range scores {
		if fs.Score > 0 {
			ranked = append(ranked, fs)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// MatchLines rescans files in order and collects lines whose lower-cased text contains
// any keyword. Collection stops once limit matches are found, so later files may
// contribute nothing.
func (s *Searcher) MatchLines(ctx context.Context, files []FileScore, keywords []string, limit int) ([]Match, []FileResult) {
	var matches []Match
	var skipped []FileResult
	if limit <= 0 || len(keywords) == 0 {
		return nil, nil
	}

	for _, file := range files {
		if len(matches) >= limit || ctx.Err() != nil {
			break
		}
		data, err := os.ReadFile(file.Path)
		if err != nil {
			s.logger.Debug("skipped file", "path", file.Path, "reason", SkipUnreadable, "error", err)
			skipped = append(skipped, FileResult{Path: file.Path, Reason: SkipUnreadable, Err: err})
			continue
		}
		for idx, line := range language.SplitLines(language.DecodeText(data)) {
			if containsAny(language.Lower(line), keywords) {
				matches = append(matches, Match{File: file.Path, Line: idx + 1})
				if len(matches) >= limit {
					break
				}
			}
		}
	}
	return matches, skipped
}

// readSource loads a candidate file. A non-nil FileResult means the file is skipped.
func (s *Searcher) readSource(path string, d os.DirEntry) (string, *FileResult) {
	info, err := d.Info()
	if err != nil {
		return "", &FileResult{Path: path, Reason: SkipUnreadable, Err: err}
	}
	if s.ignore.IsFileTooLarge(info.Size()) {
		return "", &FileResult{Path: path, Reason: SkipTooLarge}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileResult{Path: path, Reason: SkipUnreadable, Err: err}
	}
	if s.skipBinary && language.IsBinaryContent(data) {
		return "", &FileResult{Path: path, Reason: SkipBinary}
	}
	return language.DecodeText(data), nil
}

func scoreText(lowerText string, keywords []string) int {
	score := 0
	for _, keyword := range keywords {
		score += strings.Count(lowerText, keyword)
	}
	return score
}

func containsAny(lowerLine string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowerLine, keyword) {
			return true
		}
	}
	return false
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/bugreport-agent/config"
	"github.com/lexandro/bugreport-agent/ignore"
	"github.com/lexandro/bugreport-agent/language"
	"github.com/lexandro/bugreport-agent/llm"
	"github.com/lexandro/bugreport-agent/report"
	"github.com/lexandro/bugreport-agent/search"
	"github.com/lexandro/bugreport-agent/snippet"
)

// Pipeline runs feedback through search, snippet extraction and report generation.
// It keeps no state between runs.
type Pipeline struct {
	Searcher  *search.Searcher
	Reader    *snippet.Reader
	Generator *report.Generator
	Logger    *slog.Logger
}

// Gathered is the code context found for one piece of feedback.
type Gathered struct {
	Search   *search.Result
	Snippets []snippet.Snippet
	// Skipped lists every file left out while searching or reading snippets.
	Skipped []search.FileResult
}

// Outcome is the result of a full run.
type Outcome struct {
	Gathered
	Report *report.Report
}

// NewSearcher builds a Searcher from the search settings in cfg.
func NewSearcher(cfg *config.Config, logger *slog.Logger) (*search.Searcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sources, err := language.NewSourceMatcher(cfg.Extensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	matcher := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          cfg.RepoPath,
		UseGitignore:     cfg.UseGitignore,
		ExcludePatterns:  cfg.Exclude,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
	})
	if dropped := len(cfg.Exclude) - len(matcher.ExcludePatterns()); dropped > 0 {
		logger.Warn("ignoring invalid exclude patterns", "count", dropped)
	}
	return search.NewSearcher(search.Options{
		RootDir:    cfg.RepoPath,
		Ignore:     matcher,
		Sources:    sources,
		SkipBinary: cfg.SkipBinary,
		Logger:     logger,
	})
}

// New builds the full pipeline. It fails with config.ErrMissingAPIKey before any
// network call when the provider key is not configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := llm.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	searcher, err := NewSearcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Searcher:  searcher,
		Reader:    snippet.NewReader(cfg.ContextLines, logger),
		Generator: report.NewGenerator(client, logger),
		Logger:    logger,
	}, nil
}

// Gather runs the search and cuts the snippets, without calling the model.
func (p *Pipeline) Gather(ctx context.Context, feedback string, topN int) (*Gathered, error) {
	result, err := p.Searcher.Search(ctx, feedback, topN)
	if err != nil {
		return nil, fmt.Errorf("searching code: %w", err)
	}
	snippets, skipped := p.Reader.ReadSnippets(result.Matches)
	return &Gathered{
		Search:   result,
		Snippets: snippets,
		Skipped:  append(append([]search.FileResult(nil), result.Skipped...), skipped...),
	}, nil
}

// Run gathers code context and asks the model for a report.
func (p *Pipeline) Run(ctx context.Context, feedback string, topN int) (*Outcome, error) {
	start := time.Now()
	gathered, err := p.Gather(ctx, feedback, topN)
	if err != nil {
		return nil, err
	}

	r, err := p.Generator.Generate(ctx, feedback, gathered.Snippets)
	if err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	p.Logger.Info("pipeline complete",
		"snippets", len(gathered.Snippets),
		"skipped", len(gathered.Skipped),
		"elapsed", time.Since(start),
	)
	return &Outcome{Gathered: *gathered, Report: r}, nil
}

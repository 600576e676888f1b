package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexandro/bugreport-agent/config"
	"github.com/lexandro/bugreport-agent/console"
	"github.com/lexandro/bugreport-agent/pipeline"
	"github.com/lexandro/bugreport-agent/report"
	"github.com/lexandro/bugreport-agent/sink"
	"github.com/lexandro/bugreport-agent/storage"
)

func runGenerate(args []string, e env) error {
	cfg, err := parseFlags("generate", args, e, nil)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	feedback, err := pipeline.ResolveFeedback(cfg.Feedback)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.Info("starting bugreport-agent",
		"root", cfg.RepoPath,
		"provider", cfg.Provider,
		"model", cfg.ResolvedModel(),
		"topN", cfg.TopN,
		"context", cfg.ContextLines,
	)

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	outcome, err := p.Run(ctx, feedback, cfg.TopN)
	if err != nil {
		return err
	}

	paths, err := report.WriteFiles(cfg.OutDir, outcome.Report)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	e.printer.Info("Generated %s and %s", config.ReportJSONFile, config.ReportMarkdownFile)

	deliver(ctx, cfg, feedback, outcome.Report, paths, e.printer, logger)
	return nil
}

// deliver files the report with the enabled sinks and uploads the artifacts.
// Every failure here is a warning; the report files already exist.
func deliver(ctx context.Context, cfg *config.Config, feedback string, r *report.Report, paths report.Paths, printer *console.Printer, logger *slog.Logger) {
	sinks, errs := sink.Configured(cfg, logger)
	for _, err := range errs {
		printer.Warn("%v", err)
	}

	issue := sink.NewIssue(feedback, r.Markdown)
	for _, s := range sinks {
		res, err := s.CreateIssue(ctx, issue)
		if err != nil {
			printer.Warn("failed to create %s issue: %v", s.Name(), err)
			continue
		}
		if res.URL != "" {
			printer.Info("Created %s issue: %s", displayName(s.Name()), res.URL)
		} else {
			printer.Info("Sent report to %s", displayName(s.Name()))
		}
	}

	if !cfg.Upload {
		return
	}
	uploader, err := storage.NewUploader(cfg.Artifact, logger)
	if err != nil {
		printer.Warn("upload skipped: %v", err)
		return
	}
	runID := storage.RunID(time.Now())
	keys, err := uploader.Upload(ctx, runID, paths.JSON, paths.Markdown)
	if err != nil {
		printer.Warn("failed to upload report: %v", err)
		return
	}
	printer.Info("Uploaded %d files to s3://%s/%s", len(keys), cfg.Artifact.Bucket, storage.ObjectKey(cfg.Artifact.Prefix, runID, ""))
}

func displayName(sinkName string) string {
	switch sinkName {
	case "linear":
		return "Linear"
	case "github-dispatch":
		return "GitHub dispatch"
	}
	return sinkName
}

// withTimeout applies d when it is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

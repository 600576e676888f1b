package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/lexandro/bugreport-agent/config"
	"github.com/lexandro/bugreport-agent/console"
	"github.com/lexandro/bugreport-agent/pipeline"
	"github.com/lexandro/bugreport-agent/report"
	"github.com/lexandro/bugreport-agent/watcher"
)

// runWatch generates a report next to every feedback file written into the inbox.
func runWatch(args []string, e env) error {
	var inbox string
	cfg, err := parseFlags("watch", args, e, func(fs *pflag.FlagSet) {
		fs.StringVar(&inbox, "inbox", "", "Directory to watch for feedback files (.txt, .md)")
	})
	if err != nil {
		return err
	}
	if inbox == "" {
		return fmt.Errorf("%w: --inbox is required", config.ErrInvalidConfig)
	}
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	w, err := watcher.NewWatcher(inbox, watcher.NewFeedbackFilter(), 0, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	go w.Start()

	e.printer.Info("Watching %s for feedback files", inbox)
	err = w.Run(ctx, inboxHandler(cfg, p, e.printer, logger))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// inboxHandler returns the per-file step of the watch loop. Each file is a separate
// run with its own deadline.
func inboxHandler(cfg *config.Config, p *pipeline.Pipeline, printer *console.Printer, logger *slog.Logger) watcher.HandleFunc {
	return func(ctx context.Context, path string) error {
		feedback, err := pipeline.ReadFeedbackFile(path)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(ctx, cfg.Timeout)
		defer cancel()

		outcome, err := p.Run(ctx, feedback, cfg.TopN)
		if err != nil {
			return err
		}
		paths := report.SiblingPaths(path)
		if err := report.Write(paths, outcome.Report); err != nil {
			return fmt.Errorf("writing report for %s: %w", path, err)
		}
		printer.Info("Generated %s and %s", paths.JSON, paths.Markdown)

		deliver(ctx, cfg, feedback, outcome.Report, paths, printer, logger)
		return nil
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/bugreport-agent/pipeline"
	"github.com/lexandro/bugreport-agent/server"
	"github.com/lexandro/bugreport-agent/tools"
)

// runServe exposes the search and report tools over MCP on stdio.
// Stdout belongs to the protocol, so logs go to stderr or --log-file.
func runServe(args []string, e env) error {
	startTime := time.Now()

	cfg, err := parseFlags("serve", args, e, nil)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	logger.Info("starting bugreport MCP server",
		"version", server.Version,
		"root", cfg.RepoPath,
		"provider", cfg.Provider,
	)

	searcher, err := pipeline.NewSearcher(cfg, logger)
	if err != nil {
		return err
	}

	// The pipeline is built per call so the server starts without an API key.
	generate := func(ctx context.Context, feedback string, topN int) (*pipeline.Outcome, error) {
		ctx, cancel := withTimeout(ctx, cfg.Timeout)
		defer cancel()
		p, err := pipeline.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx, feedback, topN)
	}

	mcpServer := server.Setup(server.Handlers{
		Search: &tools.SearchHandler{
			Searcher:     searcher,
			TopN:         cfg.TopN,
			ContextLines: cfg.ContextLines,
			Logger:       logger,
		},
		Snippet: &tools.SnippetHandler{
			RootDir:      cfg.RepoPath,
			ContextLines: cfg.ContextLines,
			Logger:       logger,
		},
		Rank: &tools.RankHandler{
			Searcher: searcher,
			Logger:   logger,
		},
		Generate: &tools.GenerateHandler{
			Generate: generate,
			TopN:     cfg.TopN,
			Logger:   logger,
		},
		Status: &tools.StatusHandler{
			Config:    cfg,
			StartTime: startTime,
			Logger:    logger,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server running on stdio", "startup", time.Since(startTime))
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}

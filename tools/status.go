package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/bugreport-agent/config"
	"github.com/lexandro/bugreport-agent/language"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the bugreport_status tool (none required).
type StatusArgs struct{}

// StatusHandler reports the effective configuration of the running server.
type StatusHandler struct {
	Config    *config.Config
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes a bugreport_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder
	cfg := h.Config
	uptime := time.Since(h.StartTime)

	h.Logger.Info("bugreport_status", "provider", cfg.Provider, "uptime", uptime)

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = language.DefaultSourceExtensions
	}

	builder.WriteString("=== bugreport-agent Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", cfg.RepoPath))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Provider: %s (model %s)\n", cfg.Provider, cfg.ResolvedModel()))
	if _, err := cfg.APIKey(); err != nil {
		builder.WriteString("API key: missing, bugreport_generate will fail\n")
	} else {
		builder.WriteString("API key: configured\n")
	}
	builder.WriteString(fmt.Sprintf("Defaults: topN %d, context %d lines\n", cfg.TopN, cfg.ContextLines))
	builder.WriteString(fmt.Sprintf("Extensions: %s\n", strings.Join(extensions, " ")))
	if len(cfg.Exclude) > 0 {
		builder.WriteString(fmt.Sprintf("Exclude patterns: %s\n", strings.Join(cfg.Exclude, " ")))
	}
	builder.WriteString(fmt.Sprintf("Gitignore: %t\n", cfg.UseGitignore))
	builder.WriteString(fmt.Sprintf("Skip binary: %t\n", cfg.SkipBinary))
	if cfg.MaxFileSizeBytes > 0 {
		builder.WriteString(fmt.Sprintf("Max file size: %s\n", formatFileSize(cfg.MaxFileSizeBytes)))
	}
	if cfg.ProjectFile != "" {
		builder.WriteString(fmt.Sprintf("Project file: %s\n", cfg.ProjectFile))
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

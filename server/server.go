package server

import (
	"github.com/lexandro/bugreport-agent/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name is the MCP server name, also used when registering the server.
const Name = "bugreport"

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers groups the tool handlers registered on the server.
type Handlers struct {
	Search   *tools.SearchHandler
	Snippet  *tools.SnippetHandler
	Rank     *tools.RankHandler
	Generate *tools.GenerateHandler
	Status   *tools.StatusHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    Name,
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server turns user feedback into bug reports grounded in the local repository.

- Use bugreport_search to find the code a piece of feedback is about (keyword scoring, top files, context snippets)
- Use bugreport_rank to see which files score highest before reading snippets
- Use bugreport_snippet to widen or move the window around a specific line
- Use bugreport_generate to produce a structured report (JSON plus Markdown) with the configured language model
- Use bugreport_status to check the effective configuration`,
		},
	)

	// Register bugreport_search tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "bugreport_search",
		Description: `Find code relevant to user feedback.

Keywords are the words of the feedback longer than three characters. Each source file is
scored by how often the keywords occur in it; the top files are scanned line by line and
up to topN matching lines are returned with contextLines of surrounding code.`,
	}, h.Search.Handle)

	// Register bugreport_rank tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "bugreport_rank",
		Description: "Score source files against user feedback and list the best matches with their keyword counts. Does not read snippets.",
	}, h.Rank.Handle)

	// Register bugreport_snippet tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "bugreport_snippet",
		Description: `Read the lines around one line of a file. Returns numbered lines (format: "N│ content"), clamped to the file.`,
	}, h.Snippet.Handle)

	// Register bugreport_generate tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "bugreport_generate",
		Description: `Generate a bug report for user feedback: finds relevant snippets, sends them with the
feedback to the configured language model and returns the Markdown report followed by the JSON object.
Nothing is written to disk. Requires the provider API key in the server environment.`,
	}, h.Generate.Handle)

	// Register bugreport_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "bugreport_status",
		Description: "Show the repository root, provider, model, search defaults and uptime.",
	}, h.Status.Handle)

	return mcpServer
}

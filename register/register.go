// Package register adds the agent's MCP server to a Claude configuration file.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/lexandro/bugreport-agent/atomicfile"
)

// ErrUsage is returned for a missing or unknown scope.
var ErrUsage = errors.New("usage error")

const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

const serveCommand = "serve"

// entry is one element of the "mcpServers" object.
type entry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// target is a parsed register invocation.
type target struct {
	scope      string
	configPath string
	serveArgs  []string // flags passed to "serve"
}

// Run executes "register <scope> [directory] [-- serve flags]" and reports the file
// it changed on out.
func Run(serverName string, args []string, out io.Writer) error {
	t, err := parseTarget(args, os.UserHomeDir)
	if err != nil {
		return err
	}

	binaryPath, err := executablePath()
	if err != nil {
		return err
	}

	if err := addServer(t.configPath, serverName, commandFor(binaryPath, t.serveArgs)); err != nil {
		return fmt.Errorf("updating %s: %w", t.configPath, err)
	}

	fmt.Fprintf(out, "Registered %q (%s scope) in %s\n", serverName, t.scope, t.configPath)
	return nil
}

// Usage describes the register subcommand.
func Usage() string {
	bin := filepath.Base(os.Args[0])
	return fmt.Sprintf(`Usage:
  %[1]s register project [directory]    writes <directory>/.mcp.json (default: .)
  %[1]s register user                   writes ~/.claude.json
  %[1]s register project . -- --flag    forwards flags to "%[1]s serve"
`, bin)
}

// parseTarget splits args at "--" and resolves the config file for the scope.
// A project registration pins --repo-path to the project directory unless the
// forwarded flags already set it.
func parseTarget(args []string, homeDir func() (string, error)) (target, error) {
	positional, serveArgs := args, []string(nil)
	if i := slices.Index(args, "--"); i >= 0 {
		positional, serveArgs = args[:i], args[i+1:]
	}
	if len(positional) == 0 {
		return target{}, fmt.Errorf("%w: scope is required\n%s", ErrUsage, Usage())
	}

	t := target{scope: positional[0], serveArgs: serveArgs}
	switch t.scope {
	case ScopeProject:
		dir := "."
		if len(positional) > 1 {
			dir = positional[1]
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return target{}, fmt.Errorf("resolving directory %s: %w", dir, err)
		}
		t.configPath = filepath.Join(absDir, ".mcp.json")
		if !hasRepoPath(serveArgs) {
			t.serveArgs = append([]string{"--repo-path", absDir}, serveArgs...)
		}
	case ScopeUser:
		home, err := homeDir()
		if err != nil {
			return target{}, fmt.Errorf("getting home directory: %w", err)
		}
		t.configPath = filepath.Join(home, ".claude.json")
	default:
		return target{}, fmt.Errorf("%w: unknown scope %q (must be %q or %q)\n%s", ErrUsage, t.scope, ScopeProject, ScopeUser, Usage())
	}
	return t, nil
}

func hasRepoPath(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "-r" || arg == "--repo-path" || strings.HasPrefix(arg, "--repo-path=")
	})
}

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

// commandFor starts the binary in serve mode. Windows goes through cmd /C.
func commandFor(binaryPath string, serveArgs []string) entry {
	args := append([]string{serveCommand}, serveArgs...)
	if runtime.GOOS == "windows" {
		return entry{Command: "cmd", Args: append([]string{"/C", binaryPath}, args...)}
	}
	return entry{Command: binaryPath, Args: args}
}

// addServer sets mcpServers[serverName] in the JSON file at path, keeping every other key.
func addServer(path, serverName string, e entry) error {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing existing config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	servers, ok := doc["mcpServers"].(map[string]any)
	if !ok {
		if _, present := doc["mcpServers"]; present {
			return errors.New("mcpServers is not an object")
		}
		servers = map[string]any{}
		doc["mcpServers"] = servers
	}
	servers[serverName] = e

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, append(out, '\n'), 0o644)
}

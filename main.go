package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/lexandro/bugreport-agent/config"
	"github.com/lexandro/bugreport-agent/console"
	"github.com/lexandro/bugreport-agent/register"
	"github.com/lexandro/bugreport-agent/server"
)

const binaryName = "bugreport-agent"

// env carries the process environment and output streams into a command.
type env struct {
	lookup  config.LookupFunc
	stdout  io.Writer
	printer *console.Printer
}

func main() {
	e := env{
		lookup:  os.LookupEnv,
		stdout:  os.Stdout,
		printer: console.New(),
	}

	// Variables already set in the environment take precedence over .env
	if err := config.LoadDotEnv(); err != nil {
		e.printer.Warn("%v", err)
	}
	os.Exit(run(os.Args[1:], e))
}

// run dispatches to a subcommand and returns the process exit code.
// Without a known subcommand the arguments are treated as "generate" flags.
func run(args []string, e env) int {
	command := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "generate":
		err = runGenerate(args, e)
	case "serve":
		err = runServe(args, e)
	case "watch":
		err = runWatch(args, e)
	case "register":
		err = register.Run(server.Name, args, e.stdout)
	case "help":
		fmt.Fprint(e.stdout, usage())
		return 0
	default:
		err = fmt.Errorf("unknown command %q\n%s", command, usage())
	}

	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		e.printer.Error("%v", err)
		return 1
	}
	return 0
}

func usage() string {
	return fmt.Sprintf(`Usage:
  %[1]s [generate] -f FEEDBACK [-r REPO] [flags]   write report.json and report.md
  %[1]s serve [-r REPO] [flags]                    run the MCP server on stdio
  %[1]s watch --inbox DIR [-r REPO] [flags]        generate a report for every feedback file dropped in DIR
  %[1]s register project|user [dir] [-- flags]     register the MCP server

Run "%[1]s generate --help" for the list of flags.
`, binaryName)
}

// parseFlags binds the shared flags, lets extra add command-specific ones, and loads the Config.
func parseFlags(name string, args []string, e env, extra func(fs *pflag.FlagSet)) (*config.Config, error) {
	fs := pflag.NewFlagSet(binaryName+" "+name, pflag.ContinueOnError)
	fs.SetOutput(e.stdout)
	flags := config.BindFlags(fs)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return config.Load(flags, e.lookup)
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes user-facing status lines. Logs go through slog; these do not.
type Printer struct {
	out io.Writer
	err io.Writer

	info *color.Color
	warn *color.Color
	fail *color.Color
}

// New returns a Printer writing to stdout and stderr. Color follows fatih/color's
// terminal detection and NO_COLOR.
func New() *Printer {
	return NewWriters(os.Stdout, os.Stderr, false)
}

// NewWriters returns a Printer for the given writers. plain disables color.
func NewWriters(out, errOut io.Writer, plain bool) *Printer {
	p := &Printer{
		out:  out,
		err:  errOut,
		info: color.New(color.FgGreen),
		warn: color.New(color.FgYellow, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
	}
	if plain {
		p.info.DisableColor()
		p.warn.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

// Info prints a success or progress line to stdout.
func (p *Printer) Info(format string, args ...any) {
	p.info.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Warn prints "Warning: ..." to stderr.
func (p *Printer) Warn(format string, args ...any) {
	p.warn.Fprint(p.err, "Warning: ")
	fmt.Fprintln(p.err, fmt.Sprintf(format, args...))
}

// Error prints "Error: ..." to stderr.
func (p *Printer) Error(format string, args ...any) {
	p.fail.Fprint(p.err, "Error: ")
	fmt.Fprintln(p.err, fmt.Sprintf(format, args...))
}

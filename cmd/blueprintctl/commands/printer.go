package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// printer writes colored CLI output
type printer struct {
	out io.Writer
	err io.Writer
}

func (p printer) success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) warning(format string, a ...any) {
	yellow.Fprintf(p.err, "⚠ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) step(format string, a ...any) {
	cyan.Fprintf(p.err, "→ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// failure prints a titled error with suggestions to stderr and returns a
// plain error for cobra, which has error printing silenced.
func (p printer) failure(title, explanation string, suggestions ...string) error {
	red.Fprintf(p.err, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(p.err, "\n%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.err)
		for _, s := range suggestions {
			faint.Fprintf(p.err, "  %s\n", s)
		}
	}
	return fmt.Errorf("%s", title)
}

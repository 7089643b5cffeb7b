package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// Printer renders diagnostics the way the distilled compiler's logs.py did:
// a severity-coloured header followed by the offending source line and a
// caret under the column, colour gated on terminal detection.
type Printer struct {
	w        io.Writer
	colour   bool
	srcLines []string
}

// NewPrinter builds a Printer for w. If w is an *os.File attached to a
// terminal (per go-isatty), diagnostics are colourized; otherwise they are
// emitted as plain text, matching colorama's auto-detection behaviour in
// the original Python logger.
func NewPrinter(w io.Writer, source string) *Printer {
	colour := false
	if f, ok := w.(*os.File); ok {
		colour = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, colour: colour, srcLines: strings.Split(source, "\n")}
}

func (p *Printer) colourFor(sev Severity) string {
	if !p.colour {
		return ""
	}
	switch sev {
	case Error:
		return ansiRed
	case Warning:
		return ansiYellow
	default:
		return ""
	}
}

// Print renders a single diagnostic, including the source line and a caret
// when the position falls inside the known source text.
func (p *Printer) Print(d *DiagnosticError) {
	colour := p.colourFor(d.Severity)
	reset := ""
	if p.colour {
		reset = ansiReset
	}
	fmt.Fprintf(p.w, "%s%s%s\n    File %q on line %d\n", colour, strings.Title(d.Severity.String()), reset, d.File, d.Pos.Line)
	if d.Pos.Line >= 1 && d.Pos.Line <= len(p.srcLines) {
		line := strings.TrimRight(p.srcLines[d.Pos.Line-1], "\r")
		fmt.Fprintf(p.w, "        %s\n", line)
		if d.Pos.Column >= 1 {
			fmt.Fprintf(p.w, "        %s^\n", strings.Repeat(" ", d.Pos.Column-1))
		}
	}
	fmt.Fprintf(p.w, "%s%s%s\n\n", colour, d.Message, reset)
}

// PrintAll renders every diagnostic in the sink, in sorted order.
func (p *Printer) PrintAll(s *Sink) {
	for _, d := range s.All() {
		p.Print(d)
	}
}

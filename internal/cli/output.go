package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer writes command output, coloured when the destination supports it.
type Printer struct {
	out     *termenv.Output
	w       io.Writer
	success termenv.Color
	failure termenv.Color
	muted   termenv.Color
}

// NewPrinter creates a printer for w. Writers that are not terminals get plain text.
func NewPrinter(w io.Writer) *Printer {
	var opts []termenv.OutputOption
	if !isTerminal(w) {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return newPrinter(w, termenv.NewOutput(w, opts...))
}

func newPrinter(w io.Writer, out *termenv.Output) *Printer {
	return &Printer{
		out:     out,
		w:       w,
		success: out.Color("#22c55e"),
		failure: out.Color("#ef4444"),
		muted:   out.Color("#9ca3af"),
	}
}

// Writer returns the destination.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.success))
}

// Failure prints a red line.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.failure))
}

// Muted prints a grey line.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.out.String(fmt.Sprintf(format, args...)).Foreground(p.muted))
}

// Plain prints an uncoloured line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// PrintBanner outputs the banner shown when the server starts.
func (p *Printer) PrintBanner() {
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}
	lines := []string{
		"   __ _  ___ ___ ___| | ___ _ __ __ _| |_ ___ ",
		"  / _` |/ __/ __/ _ \\ |/ _ \\ '__/ _` | __/ _ \\",
		" | (_| | (_| (_|  __/ |  __/ | | (_| | ||  __/",
		"  \\__,_|\\___\\___\\___|_|\\___|_|  \\__,_|\\__\\___|",
	}

	fmt.Fprintln(p.w)
	for i, line := range lines {
		fmt.Fprintln(p.w, p.out.String(line).Foreground(p.out.Color(colors[i%len(colors)])))
	}
	fmt.Fprintln(p.w)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

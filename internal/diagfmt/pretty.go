package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sigil/internal/diag"
	"sigil/internal/source"
)

// Pretty renders a bag for terminals, one block per diagnostic:
//
//	main.sg:3:11: ERROR [ARC3001]: struct `Node` owns itself through field `next`
//	    next: Node,
//	          ^~~~
//	  note: the cycle enters through this field (main.sg:3:5)
//
// Positions degrade to byte offsets ("main.sg:@47") for files whose
// content is not loaded, and the snippet is skipped for those.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	for _, d := range bag.Items() {
		writeDiagnostic(w, d, fs, opts)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... and %d more diagnostics\n", n)
	}
}

func writeDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityColor(d.Severity)
	if opts.Color {
		sev.EnableColor()
	} else {
		sev.DisableColor()
	}

	fmt.Fprintf(w, "%s: %s [%s]: %s\n",
		position(fs, d.Primary), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)

	if opts.ShowSnippets {
		writeSnippet(w, fs, d.Primary, sev)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s (%s)\n", n.Msg, position(fs, n.Span))
		}
	}
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return fmt.Sprintf("@%d", sp.Start)
	}
	return fs.Position(sp)
}

// writeSnippet prints the first line of the span with a caret run under
// the offending range. Columns are byte offsets, so the prefix slice is
// byte-exact; pad and marker lengths are measured in display cells so
// the caret lines up under wide runes.
func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, sev *color.Color) {
	if fs == nil {
		return
	}
	start, end, ok := fs.Resolve(sp)
	if !ok {
		return
	}
	line := fs.Get(sp.File).GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	prefix := line[:min(int(start.Col)-1, len(line))]
	spanBytes := 1
	if end.Line == start.Line && end.Col > start.Col {
		spanBytes = int(end.Col - start.Col)
	}
	// Multi-line spans underline to the end of the first line.
	spanned := line[len(prefix):min(len(prefix)+spanBytes, len(line))]
	cells := runewidth.StringWidth(spanned)
	if cells < 1 {
		cells = 1
	}
	marker := "^" + strings.Repeat("~", cells-1)
	fmt.Fprintf(w, "    %s%s\n",
		strings.Repeat(" ", runewidth.StringWidth(prefix)), sev.Sprint(marker))
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

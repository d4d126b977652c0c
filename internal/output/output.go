// Package output provides context-aware output for monorepo.
// Stdout is used for primary output (success lines, the package table).
// Stderr (via log package) is used for diagnostics.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
)

type ctxKey struct{}

// Printer writes primary output to stdout. Styled text is downsampled to
// what the destination supports, plain text when it is not a terminal.
type Printer struct {
	w   io.Writer
	out io.Writer
}

// New creates a new Printer writing to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w, out: colorprofile.NewWriter(w, os.Environ())}
}

// WithPrinter attaches a Printer to the context.
func WithPrinter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, New(w))
}

// FromContext retrieves the Printer from context.
// Returns a Printer writing to os.Stdout if none is attached.
func FromContext(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Print writes output without a newline.
func (p *Printer) Print(a ...any) {
	fmt.Fprint(p.out, a...)
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Println writes a line of output.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Success writes a line in the success style.
func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintln(p.out, SuccessStyle.Render(fmt.Sprintf(format, a...)))
}

// Muted writes a line in the muted style.
func (p *Printer) Muted(format string, a ...any) {
	fmt.Fprintln(p.out, MutedStyle.Render(fmt.Sprintf(format, a...)))
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/g5becks/apidoc/internal/source"
)

type styles struct {
	green *color.Color
	red   *color.Color
	dim   *color.Color
	bold  *color.Color
}

func newStyles() styles {
	return styles{
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		dim:   color.New(color.Faint),
		bold:  color.New(color.Bold),
	}
}

// Printer writes colored status lines to stderr. Safe for concurrent use;
// fetch results arrive from parallel workers.
type Printer struct {
	w  io.Writer
	mu sync.Mutex
	s  styles
}

func NewPrinter() *Printer {
	return &Printer{w: os.Stderr, s: newStyles()}
}

// NewPrinterWithWriter creates a Printer for the given writer.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{w: w, s: newStyles()}
}

func (p *Printer) Success(format string, args ...any) {
	p.print(p.s.green.Sprint("✓"), format, args...)
}

func (p *Printer) Failure(format string, args ...any) {
	p.print(p.s.red.Sprint("✗"), format, args...)
}

func (p *Printer) Info(format string, args ...any) {
	p.print(p.s.dim.Sprint("·"), format, args...)
}

func (p *Printer) print(marker, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s %s\n", marker, fmt.Sprintf(format, args...))
}

// HandleFetchResult is wired into source.FetchOptions.OnResult.
func (p *Printer) HandleFetchResult(result source.FetchResult) {
	switch {
	case result.NotModified:
		p.Info("%s unchanged", p.s.bold.Sprint(result.Name))
	case result.Updated:
		p.Success("%s fetched to %s", p.s.bold.Sprint(result.Name), result.Path)
	}
}

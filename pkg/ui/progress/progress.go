// Package progress shows one spinner per pipeline phase.
//
// On a terminal it uses pterm spinners; elsewhere it prints one line per
// finished phase so logs and pipes still see the phase summaries.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Reporter creates phases
type Reporter struct {
	out         io.Writer
	interactive bool
	total       int
}

// New creates a reporter for total phases. When interactive is false,
// phase summaries are written to out as plain lines.
func New(out io.Writer, interactive bool, total int) *Reporter {
	return &Reporter{out: out, interactive: interactive, total: total}
}

// Phase is one running step
type Phase struct {
	mu      sync.Mutex
	prefix  string
	out     io.Writer
	spinner *pterm.SpinnerPrinter
	text    string
	closed  bool
}

// Start begins phase step (1-based) with text
func (r *Reporter) Start(step int, text string) *Phase {
	p := &Phase{
		prefix: fmt.Sprintf("[%d/%d]", step, r.total),
		out:    r.out,
		text:   text,
	}
	if r.interactive {
		spinner, err := pterm.DefaultSpinner.
			WithRemoveWhenDone(false).
			WithShowTimer(true).
			Start(p.prefix + " " + text)
		if err == nil {
			p.spinner = spinner
		}
	}
	return p
}

// Update replaces the spinner text; it is a no-op without a terminal
func (p *Phase) Update(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.text = text
	if p.spinner != nil {
		p.spinner.UpdateText(p.prefix + " " + text)
	}
}

// Success ends the phase with a summary line
func (p *Phase) Success(text string) {
	p.finish(text, false)
}

// Fail ends the phase with an error line
func (p *Phase) Fail(text string) {
	p.finish(text, true)
}

func (p *Phase) finish(text string, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	line := p.prefix + " " + text
	if p.spinner != nil {
		if failed {
			p.spinner.Fail(line)
		} else {
			p.spinner.Success(line)
		}
		return
	}
	if p.out == nil {
		return
	}
	if failed {
		_, _ = fmt.Fprintf(p.out, "%s FAILED %s\n", p.prefix, text)
		return
	}
	_, _ = fmt.Fprintln(p.out, line)
}

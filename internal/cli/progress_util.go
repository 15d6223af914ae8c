package cli

import (
	"fmt"
	"io"

	"reelgen/internal/slideshow"
	"reelgen/internal/tui"
)

// plainReporter prints one line per phase and a frame count every tenth
// of the render, for terminals without the interactive table.
type plainReporter struct {
	out  io.Writer
	next int
}

func newPlainReporter(out io.Writer) *plainReporter {
	return &plainReporter{out: out}
}

func (p *plainReporter) Phase(state slideshow.State, detail string) {
	fmt.Fprintf(p.out, "%-10s %s\n", state.String()+":", tui.NonEmptyOrDash(detail))
}

func (p *plainReporter) Frame(done, total int) {
	if total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct < p.next && done != total {
		return
	}
	fmt.Fprintf(p.out, "  frames %d/%d (%d%%)\n", done, total, pct)
	p.next = pct/10*10 + 10
}

package tui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputMode selects how a command reports progress.
type OutputMode int

const (
	ModeTUI OutputMode = iota
	ModePlain
	ModeJSON
)

func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeJSON:
		return "json"
	default:
		return "plain"
	}
}

// DetectMode picks JSON when asked, the interactive table when out is a
// capable terminal, and plain lines otherwise.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if noProgress {
		return ModePlain
	}
	f, ok := out.(*os.File)
	if !ok || !isTerminal(f) {
		return ModePlain
	}
	if term := os.Getenv("TERM"); term == "" || strings.EqualFold(term, "dumb") {
		return ModePlain
	}
	return ModeTUI
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

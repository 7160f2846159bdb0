// Package progress renders extraction progress. The strategy is picked once
// per run from the capabilities of the output surface: interactive terminals
// get a single line redrawn in place, anything else gets one line per update.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Mode forces a strategy instead of probing the output.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeOverwrite Mode = "overwrite"
	ModeLine      Mode = "line"
)

// ANSI save / restore cursor position
const (
	saveCursor    = "\033[s"
	restoreCursor = "\033[u"
)

// Reporter receives progress updates from an extraction run.
type Reporter interface {
	// Start marks the row the overwrite strategy keeps redrawing.
	Start()
	// Report renders "Extracting: {current}/{total} - {label}".
	Report(current, total int, label string)
	// Finish ends the progress block. It may be called more than once, and
	// Start may follow it to begin a new block below other output.
	Finish()
}

// Render formats a single progress message.
func Render(current, total int, label string) string {
	return fmt.Sprintf("Extracting: %d/%d - %s", current, total, label)
}

// New probes w and returns the matching reporter.
func New(w io.Writer) Reporter {
	return NewWithMode(w, ModeAuto)
}

// NewWithMode returns a reporter for w using mode; ModeAuto probes w.
func NewWithMode(w io.Writer, mode Mode) Reporter {
	switch mode {
	case ModeOverwrite:
		return newOverwrite(w)
	case ModeLine:
		return &lineReporter{w: w}
	}
	if IsInteractive(w) {
		return newOverwrite(w)
	}
	return &lineReporter{w: w}
}

// IsInteractive reports whether w is a terminal that supports cursor
// positioning.
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newOverwrite(w io.Writer) *overwriteReporter {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return &overwriteReporter{w: w}
}

// overwriteReporter redraws one row. Its only state is the length of the last
// render and whether the row has been captured.
type overwriteReporter struct {
	w       io.Writer
	prevLen int
	started bool
}

func (r *overwriteReporter) Start() {
	fmt.Fprint(r.w, saveCursor)
	r.started = true
	r.prevLen = 0
}

func (r *overwriteReporter) Report(current, total int, label string) {
	if !r.started {
		r.Start()
	}
	text := Render(current, total, label)
	n := len([]rune(text))
	pad := ""
	if n < r.prevLen {
		pad = strings.Repeat(" ", r.prevLen-n)
	}
	fmt.Fprint(r.w, restoreCursor+text+pad)
	r.prevLen = n
}

func (r *overwriteReporter) Finish() {
	if r.started && r.prevLen > 0 {
		fmt.Fprintln(r.w)
	}
	r.started = false
	r.prevLen = 0
}

// lineReporter appends one line per update.
type lineReporter struct {
	w io.Writer
}

func (r *lineReporter) Start() {}

func (r *lineReporter) Report(current, total int, label string) {
	fmt.Fprintln(r.w, Render(current, total, label))
}

func (r *lineReporter) Finish() {}

// FormatSize returns a human-readable size string
func FormatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

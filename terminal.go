// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
)

const (
	// labelWidth is the display width of the package name in the progress line.
	labelWidth = 20

	// barWidth is the number of cells of the progress bar.
	barWidth = 40
)

// TerminalSink renders the progress as a single rewriting line:
//
//	Unpacking <name>             [========                                ] 20%
//
// If the writer is not a terminal, a line is written for every change of the
// percentage instead.
type TerminalSink struct {
	w           io.Writer
	interactive bool
	last        int
}

// NewTerminalSink returns a sink writing to w. Carriage return rewriting is
// used if w is a terminal.
func NewTerminalSink(w io.Writer) *TerminalSink {
	interactive := false
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &TerminalSink{w: w, interactive: interactive, last: -1}
}

// Report renders the progress line.
func (s *TerminalSink) Report(percent int, label string) {
	if s.interactive {
		fmt.Fprintf(s.w, "\r%s", progressLine(percent, label))
		s.last = percent
		return
	}
	if percent == s.last {
		return
	}
	s.last = percent
	fmt.Fprintln(s.w, progressLine(percent, label))
}

// Finish terminates the progress line and prints the completion notice.
func (s *TerminalSink) Finish(label string) {
	if s.interactive && s.last >= 0 {
		fmt.Fprintln(s.w)
	}
	fmt.Fprintf(s.w, "The package '%s' has been successfully unpacked\n", label)
	s.last = -1
}

// progressLine formats the progress line without the leading carriage return.
func progressLine(percent int, label string) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	return fmt.Sprintf("Unpacking %s [%s] %d%%", formatLabel(label, labelWidth), bar, percent)
}

// formatLabel truncates name to width display cells and marks the cut with
// "...", or pads it with spaces to exactly width cells.
func formatLabel(name string, width int) string {
	if runewidth.StringWidth(name) > width {
		name = runewidth.Truncate(name, width, "...")
	}
	return runewidth.FillRight(name, width)
}

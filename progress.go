// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

// UnknownTotal marks that no reliable estimate of the number of entries in an
// archive is available.
const UnknownTotal = -1

// placeholderTotal is the divisor used for the percentage while the total is
// unknown. The resulting percentage is an approximation only.
const placeholderTotal = 100

// ProgressSink receives the progress of an extraction. Implementations are
// called from the goroutine that runs the extraction.
type ProgressSink interface {
	// Report is called after each extracted entry with the current
	// percentage (0-100) and the package label.
	Report(percent int, label string)

	// Finish is called once after the last entry has been extracted.
	Finish(label string)
}

// NopSink is a [ProgressSink] that discards all progress.
type NopSink struct{}

// Report discards the progress.
func (NopSink) Report(int, string) {}

// Finish discards the completion.
func (NopSink) Finish(string) {}

// Progress is the progress state of one extraction.
type Progress struct {
	processed int
	total     int
	last      int
}

// newProgress returns a progress counter. total is the estimated number of
// entries, or [UnknownTotal].
func newProgress(total int) *Progress {
	if total < 0 {
		total = UnknownTotal
	}
	return &Progress{total: total}
}

// Add counts one processed entry and returns the new percentage.
func (p *Progress) Add() int {
	p.processed++
	pct := p.processed * 100 / p.divisor()
	if pct > 100 {
		pct = 100
	}

	// a total that turns out to be too small must not make the bar jump back
	if pct < p.last {
		pct = p.last
	}
	p.last = pct
	return pct
}

// Percent returns the last computed percentage.
func (p *Progress) Percent() int {
	return p.last
}

// Processed returns the number of processed entries.
func (p *Progress) Processed() int {
	return p.processed
}

// Total returns the estimated total, or [UnknownTotal].
func (p *Progress) Total() int {
	return p.total
}

// TotalKnown returns true if the percentage is based on a real estimate
// instead of the placeholder.
func (p *Progress) TotalKnown() bool {
	return p.total != UnknownTotal
}

func (p *Progress) divisor() int {
	switch {
	case p.total == UnknownTotal:
		return placeholderTotal
	case p.total == 0:
		// an empty archive has nothing left to do
		return 1
	}
	return p.total
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"testing"
)

func TestProgressAdd(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		entries   int
		want      []int
		wantKnown bool
	}{
		{
			name:      "known total",
			total:     4,
			entries:   4,
			want:      []int{25, 50, 75, 100},
			wantKnown: true,
		},
		{
			name:      "known total with rounding",
			total:     3,
			entries:   3,
			want:      []int{33, 66, 100},
			wantKnown: true,
		},
		{
			name:      "total too small is capped",
			total:     2,
			entries:   4,
			want:      []int{50, 100, 100, 100},
			wantKnown: true,
		},
		{
			name:      "unknown total uses placeholder",
			total:     UnknownTotal,
			entries:   3,
			want:      []int{1, 2, 3},
			wantKnown: false,
		},
		{
			name:      "zero total is known",
			total:     0,
			entries:   2,
			want:      []int{100, 100},
			wantKnown: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := newProgress(test.total)
			for i := 0; i < test.entries; i++ {
				got := p.Add()
				if got != test.want[i] {
					t.Errorf("Add() #%d = %d, want %d", i+1, got, test.want[i])
				}
			}
			if p.Processed() != test.entries {
				t.Errorf("Processed() = %d, want %d", p.Processed(), test.entries)
			}
			if p.TotalKnown() != test.wantKnown {
				t.Errorf("TotalKnown() = %v, want %v", p.TotalKnown(), test.wantKnown)
			}
			if p.Percent() != test.want[len(test.want)-1] {
				t.Errorf("Percent() = %d, want %d", p.Percent(), test.want[len(test.want)-1])
			}
		})
	}
}

// TestProgressUnknownTotalBounded checks that the percentage of an archive
// with more entries than the placeholder never decreases and stays within 100.
func TestProgressUnknownTotalBounded(t *testing.T) {
	p := newProgress(UnknownTotal)
	last := 0
	for i := 0; i < 1000; i++ {
		got := p.Add()
		if got < last {
			t.Fatalf("Add() #%d = %d, decreased from %d", i+1, got, last)
		}
		if got > 100 {
			t.Fatalf("Add() #%d = %d, exceeds 100", i+1, got)
		}
		last = got
	}
	if last != 100 {
		t.Errorf("Percent() = %d, want 100", last)
	}
	if p.Total() != UnknownTotal {
		t.Errorf("Total() = %d, want %d", p.Total(), UnknownTotal)
	}
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"io"
)

// limitErrorReader reads from the compressed archive and fails with
// [ErrMaxInputSizeExceeded] once more than the limit would be consumed.
// A negative limit disables the check.
type limitErrorReader struct {
	R io.Reader // underlying reader
	L int64     // limit
	N int64     // number of bytes read
}

// Read reads from the underlying reader and fills up p.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	// determine how many bytes to read
	m := l.L - l.N
	if l.L < 0 || m > int64(len(p)) {
		m = int64(len(p))
	}

	// the limit is reached, check if the source has more data
	if m == 0 && len(p) > 0 {
		var peek [1]byte
		n, err := l.R.Read(peek[:])
		if n > 0 {
			return 0, fmt.Errorf("%w: more than %d bytes", ErrMaxInputSizeExceeded, l.L)
		}
		return 0, err
	}

	// read from underlying reader and preserve error type
	n, err := l.R.Read(p[:m])
	l.N += int64(n)
	return n, err
}

// ReadBytes returns how many bytes have been read from the underlying reader
func (l *limitErrorReader) ReadBytes() int {
	return int(l.N)
}

// newLimitErrorReader returns a new limitErrorReader that reads from r
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{R: r, L: limit, N: 0}
}

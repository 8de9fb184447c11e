// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"io"
)

// limitErrorWriter is a wrapper around an io.Writer that fails with
// [ErrMaxExtractionSizeExceeded] when the limit is reached.
type limitErrorWriter struct {
	W io.Writer // underlying writer
	L int64     // limit
	N int64     // number of bytes written
}

// Write writes up to len(p) bytes from p to the underlying data stream. The
// bytes up to the limit are written before the error is returned.
func (l *limitErrorWriter) Write(p []byte) (n int, err error) {
	// check if we reached the limit
	if l.N >= l.L && len(p) > 0 {
		return 0, l.exceeded()
	}

	// write until we reach the limit
	if int64(len(p)) > l.L-l.N {
		n, err = l.W.Write(p[0 : l.L-l.N])
		l.N += int64(n)
		if err == nil {
			err = l.exceeded()
		}
		return n, err
	}

	// write normally
	n, err = l.W.Write(p)
	l.N += int64(n)
	return n, err
}

func (l *limitErrorWriter) exceeded() error {
	return fmt.Errorf("%w: limit of %d bytes", ErrMaxExtractionSizeExceeded, l.L)
}

// limitWriter returns a writer that wraps w and allows at most maxSize bytes.
// A negative maxSize disables the limit.
func limitWriter(w io.Writer, maxSize int64) io.Writer {
	if maxSize < 0 {
		return w
	}
	return &limitErrorWriter{W: w, L: maxSize}
}

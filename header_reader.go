// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"io"
)

// headerReader is an implementation of io.Reader that replays the first bytes
// of the underlying reader. The compression of an archive is detected from
// these bytes before the stream is handed to the decompressor.
type headerReader struct {
	r      io.Reader
	header []byte
	peeked []byte
}

// newHeaderReader reads up to headerSize bytes from r. A stream shorter than
// headerSize is not an error, the header is just shorter.
func newHeaderReader(r io.Reader, headerSize int) (*headerReader, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	return &headerReader{r: r, header: buf[:n], peeked: buf[:n]}, nil
}

func (p *headerReader) Read(b []byte) (int, error) {
	// read from header first
	if len(p.header) > 0 {
		n := copy(b, p.header)
		p.header = p.header[n:]
		return n, nil
	}

	// then continue reading from the source
	return p.r.Read(b)
}

// PeekHeader returns the bytes read ahead, independent of how much
// has already been consumed through Read.
func (p *headerReader) PeekHeader() []byte {
	return p.peeked
}

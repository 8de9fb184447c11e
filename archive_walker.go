// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"io"
	"io/fs"
	"time"
)

// archiveWalker is an interface that represents a file walker in an archive
type archiveWalker interface {
	// Next returns the next entry, or io.EOF if the archive is exhausted.
	Next() (archiveEntry, error)

	// SizeHint returns an upper bound of the entries in the archive. The
	// boolean is false if no reliable bound is known.
	SizeHint() (int, bool)
}

// archiveEntry is an interface that represents a file in an archive
type archiveEntry interface {
	IsDir() bool
	IsHardlink() bool
	IsRegular() bool
	IsSymlink() bool
	IsGlobalHeader() bool
	Linkname() string
	Mode() fs.FileMode
	ModTime() time.Time
	AccessTime() time.Time
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
	Type() byte
}

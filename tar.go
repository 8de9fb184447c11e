// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// tarWalker is a walker for tar streams
type tarWalker struct {
	tr    *tar.Reader
	total int
}

// newTarWalker returns a walker over the tar stream in src. total is the
// known number of entries or [UnknownTotal].
func newTarWalker(src io.Reader, total int) *tarWalker {
	return &tarWalker{tr: tar.NewReader(src), total: total}
}

// Next returns the next entry in the tar archive
func (t *tarWalker) Next() (archiveEntry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr, t.tr}, nil
}

// SizeHint returns the number of entries counted in a pre-pass. A plain tar
// stream has no index, so without a pre-pass the bound is unknown.
func (t *tarWalker) SizeHint() (int, bool) {
	if t.total == UnknownTotal {
		return 0, false
	}
	return t.total, true
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

// AccessTime returns the access time of the entry
func (t *tarEntry) AccessTime() time.Time {
	return t.hdr.AccessTime
}

// IsDir returns true if the entry is a directory
func (t *tarEntry) IsDir() bool {
	return t.hdr.Typeflag == tar.TypeDir
}

// IsGlobalHeader returns true for pax global headers, e.g. the
// pax_global_header written by git archive
func (t *tarEntry) IsGlobalHeader() bool {
	return t.hdr.Typeflag == tar.TypeXGlobalHeader
}

// IsHardlink returns true if the entry is a hard link
func (t *tarEntry) IsHardlink() bool {
	return t.hdr.Typeflag == tar.TypeLink
}

// IsRegular returns true if the entry is a regular file
func (t *tarEntry) IsRegular() bool {
	//nolint:staticcheck // TypeRegA is still written by old tar implementations
	return t.hdr.Typeflag == tar.TypeReg || t.hdr.Typeflag == tar.TypeRegA
}

// IsSymlink returns true if the entry is a symlink
func (t *tarEntry) IsSymlink() bool {
	return t.hdr.Typeflag == tar.TypeSymlink
}

// Linkname returns the link target of the entry
func (t *tarEntry) Linkname() string {
	return t.hdr.Linkname
}

// Mode returns the mode of the entry
func (t *tarEntry) Mode() fs.FileMode {
	return t.hdr.FileInfo().Mode()
}

// ModTime returns the modification time of the entry
func (t *tarEntry) ModTime() time.Time {
	return t.hdr.ModTime
}

// Name returns the name of the entry
func (t *tarEntry) Name() string {
	return t.hdr.Name
}

// Open returns a reader for the entry. The reader is only valid until the
// next call to Next on the walker.
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(t.tr), nil
}

// Size returns the size of the entry
func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

// Type returns the tar type flag of the entry
func (t *tarEntry) Type() byte {
	return t.hdr.Typeflag
}

// countTarEntries reads all headers of the tar stream in src and returns the
// number of entries that are reported as progress. Global headers are not counted.
func countTarEntries(src io.Reader) (int, error) {
	tr := tar.NewReader(src)
	var n int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("cannot read tar header: %w", err)
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		n++
	}
}

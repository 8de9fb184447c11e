// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// compressFunc is a function that compresses a byte slice
type compressFunc func(*testing.T, []byte) []byte

// archiveContent describes one entry of a test tar archive
type archiveContent struct {
	Content    []byte
	Linktarget string
	Mode       fs.FileMode
	ModTime    time.Time
	Name       string
	Filetype   byte
}

// packTar creates a tar archive with the given content. Entries without mode
// get 0755 for directories and 0644 for everything else.
func packTar(t *testing.T, content []archiveContent) []byte {
	t.Helper()

	// create tar writer
	writeBuffer := bytes.NewBuffer([]byte{})
	tw := tar.NewWriter(writeBuffer)

	// write content
	for _, c := range content {
		mode := c.Mode
		if mode == 0 {
			mode = 0644
			if c.Filetype == tar.TypeDir {
				mode = 0755
			}
		}

		// create header
		hdr := &tar.Header{
			Name:     c.Name,
			Mode:     int64(mode),
			Size:     int64(len(c.Content)),
			Linkname: c.Linktarget,
			Typeflag: c.Filetype,
			ModTime:  c.ModTime,
		}
		if c.Filetype != tar.TypeReg {
			hdr.Size = 0
		}
		if c.Filetype == tar.TypeXGlobalHeader {
			hdr = &tar.Header{Name: c.Name, Typeflag: c.Filetype}
		}

		// write header
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header: %v", err)
		}

		// write data
		if hdr.Size > 0 {
			if _, err := tw.Write(c.Content); err != nil {
				t.Fatalf("error writing tar data: %v", err)
			}
		}
	}

	// close tar writer
	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}

	return writeBuffer.Bytes()
}

// regularFiles returns archive content with n regular files named file<i>
func regularFiles(n int) []archiveContent {
	var content []archiveContent
	for i := 0; i < n; i++ {
		content = append(content, archiveContent{
			Name:     fmt.Sprintf("file%d", i),
			Content:  []byte("foobar content"),
			Filetype: tar.TypeReg,
		})
	}
	return content
}

// newTestFile writes data to path and returns path
func newTestFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("error creating directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		t.Fatalf("error writing test file: %v", err)
	}
	return path
}

// compressXz compresses the data using the Xz algorithm
func compressXz(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("error creating xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to xz writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing xz writer: %v", err)
	}

	return buf.Bytes()
}

// compressGzip compresses the data using the gzip algorithm
func compressGzip(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to gzip writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing gzip writer: %v", err)
	}

	return buf.Bytes()
}

// compressZstd compresses the data using the zstandard algorithm
func compressZstd(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("error creating zstd writer: %v", err)
	}
	if _, err := enc.Write(data); err != nil {
		t.Fatalf("error writing data to zstd writer: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("error closing zstd writer: %v", err)
	}

	return buf.Bytes()
}

// compressBzip2 compresses data with bzip2 algorithm.
func compressBzip2(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{
		Level: bzip2.DefaultCompression,
	})
	if err != nil {
		t.Fatalf("error creating bzip2 writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to bzip2 writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing bzip2 writer: %v", err)
	}

	return buf.Bytes()
}

// compressLZ4 compresses data with the lz4 frame format.
func compressLZ4(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data to lz4 writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing lz4 writer: %v", err)
	}

	return buf.Bytes()
}

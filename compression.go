// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"bytes"
	"fmt"
	"io"
)

// Compression names a decompression algorithm for the tar stream.
type Compression string

const (
	// CompressionAuto detects the compression from the magic bytes of the archive.
	CompressionAuto Compression = ""

	// CompressionXz is the xz compression.
	CompressionXz Compression = "xz"

	// CompressionGzip is the gzip compression.
	CompressionGzip Compression = "gzip"

	// CompressionZstd is the zstandard compression.
	CompressionZstd Compression = "zstd"

	// CompressionBzip2 is the bzip2 compression.
	CompressionBzip2 Compression = "bzip2"

	// CompressionLZ4 is the lz4 frame compression.
	CompressionLZ4 Compression = "lz4"
)

// String returns the name of the compression, "auto" for [CompressionAuto].
func (c Compression) String() string {
	if c == CompressionAuto {
		return "auto"
	}
	return string(c)
}

// ParseCompression converts a name into a [Compression]. The names "" and "auto"
// map to [CompressionAuto].
func ParseCompression(name string) (Compression, error) {
	if name == "" || name == "auto" {
		return CompressionAuto, nil
	}
	if _, ok := availableDecompressors[Compression(name)]; ok {
		return Compression(name), nil
	}
	return CompressionAuto, fmt.Errorf("unknown compression %q", name)
}

// decompressionFunc returns a reader that decompresses src.
type decompressionFunc func(io.Reader) (io.Reader, error)

// headerCheck is a function that checks if the given header matches the expected magic bytes.
type headerCheck func([]byte) bool

type availableDecompressor struct {
	Decompress  decompressionFunc
	HeaderCheck headerCheck
	MagicBytes  [][]byte
}

// availableDecompressors is the collection of supported decompressors with
// their magic bytes
var availableDecompressors = map[Compression]availableDecompressor{
	CompressionXz: {
		Decompress:  decompressXzStream,
		HeaderCheck: isXz,
		MagicBytes:  magicBytesXz,
	},
	CompressionGzip: {
		Decompress:  decompressGZipStream,
		HeaderCheck: isGZip,
		MagicBytes:  magicBytesGZip,
	},
	CompressionZstd: {
		Decompress:  decompressZstdStream,
		HeaderCheck: isZstd,
		MagicBytes:  magicBytesZstd,
	},
	CompressionBzip2: {
		Decompress:  decompressBzip2Stream,
		HeaderCheck: isBzip2,
		MagicBytes:  magicBytesBzip2,
	},
	CompressionLZ4: {
		Decompress:  decompressLZ4Stream,
		HeaderCheck: isLZ4,
		MagicBytes:  magicBytesLZ4,
	},
}

// sniffOrder is the order in which the magic bytes are checked.
var sniffOrder = []Compression{
	CompressionXz,
	CompressionGzip,
	CompressionZstd,
	CompressionBzip2,
	CompressionLZ4,
}

// maxHeaderLength is the maximum header length of all decompressors
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	for _, d := range availableDecompressors {
		for _, mb := range d.MagicBytes {
			if len(mb) > maxHeaderLength {
				maxHeaderLength = len(mb)
			}
		}
	}
}

// detectCompression returns the compression matching header, or
// [CompressionAuto] if no magic bytes match.
func detectCompression(header []byte) Compression {
	for _, c := range sniffOrder {
		if availableDecompressors[c].HeaderCheck(header) {
			return c
		}
	}
	return CompressionAuto
}

// matchesMagicBytes checks if data contains one of magicBytes at offset.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	for _, mb := range magicBytes {
		// check if header is long enough
		if offset+len(mb) > len(data) {
			continue
		}

		if bytes.Equal(mb, data[offset:offset+len(mb)]) {
			return true
		}
	}
	return false
}

// selectCompression decides which compression to use for an archive with the
// given suffix rule and peeked header.
//
// A forced compression from the configuration always wins. Otherwise the magic
// bytes decide; if they are unknown, the compression implied by the suffix is
// used, and xz if the suffix implies none.
func selectCompression(rule archiveSuffix, header []byte, cfg *Config) Compression {
	if forced := cfg.Compression(); forced != CompressionAuto {
		return forced
	}

	detected := detectCompression(header)
	switch {
	case detected == CompressionAuto && rule.Compression == CompressionAuto:
		cfg.Logger().Debug("no magic bytes matched, assume default compression", "compression", CompressionXz)
		return CompressionXz
	case detected == CompressionAuto:
		return rule.Compression
	case rule.Compression != CompressionAuto && detected != rule.Compression:
		cfg.Logger().Warn("compression does not match suffix", "suffix", rule.Suffix, "detected", detected)
	}
	return detected
}

// decompressStream wraps src into a decompressing reader. The compression is
// selected from the peeked header and the suffix rule. The returned close
// function releases the decompressor.
func decompressStream(src io.Reader, rule archiveSuffix, cfg *Config) (io.Reader, Compression, func(), error) {
	hr, err := newHeaderReader(src, maxHeaderLength)
	if err != nil {
		return nil, CompressionAuto, nil, err
	}

	c := selectCompression(rule, hr.PeekHeader(), cfg)
	d, ok := availableDecompressors[c]
	if !ok {
		return nil, c, nil, fmt.Errorf("unknown compression %q", c)
	}

	cfg.Logger().Debug("decompress", "compression", c)
	stream, err := d.Decompress(hr)
	if err != nil {
		return nil, c, nil, fmt.Errorf("cannot start %s decompression: %w", c, err)
	}

	closeFn := func() {
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
	}
	return stream, c, closeFn, nil
}

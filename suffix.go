// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// SuffixTarXz is the primary suffix for xz compressed tar archives.
	SuffixTarXz = ".tar.xz"

	// SuffixTarGz is the suffix for gzip compressed tar archives.
	SuffixTarGz = ".tar.gz"

	// SuffixApg is the package alias suffix. The compression of an apg
	// package is detected from its magic bytes.
	SuffixApg = ".apg"
)

// archiveSuffix binds a recognized suffix to the compression it implies.
type archiveSuffix struct {
	Suffix      string
	Compression Compression
}

// recognizedSuffixes are checked in order, first match wins.
var recognizedSuffixes = []archiveSuffix{
	{Suffix: SuffixTarXz, Compression: CompressionXz},
	{Suffix: SuffixTarGz, Compression: CompressionGzip},
	{Suffix: SuffixApg, Compression: CompressionAuto},
}

// RecognizedSuffixes returns the recognized archive suffixes in priority order.
func RecognizedSuffixes() []string {
	s := make([]string, 0, len(recognizedSuffixes))
	for _, rs := range recognizedSuffixes {
		s = append(s, rs.Suffix)
	}
	return s
}

// PackageName returns the package name for archivePath, which is the base name
// of the archive with the recognized suffix stripped. Directory components of
// archivePath are ignored. If the name does not end with a recognized suffix,
// or nothing is left after stripping it, an [ErrUnsupportedFormat] error is
// returned. The function does not access the filesystem.
func PackageName(archivePath string) (string, error) {
	name, _, err := matchSuffix(archivePath)
	return name, err
}

// matchSuffix strips the first matching suffix from the base name of
// archivePath and returns the package name together with the suffix rule.
func matchSuffix(archivePath string) (string, archiveSuffix, error) {
	base := filepath.Base(archivePath)
	for _, rs := range recognizedSuffixes {
		if !strings.HasSuffix(base, rs.Suffix) {
			continue
		}
		name := strings.TrimSuffix(base, rs.Suffix)
		if len(name) == 0 {
			return "", archiveSuffix{}, fmt.Errorf("%w: '%s' has no package name", ErrUnsupportedFormat, base)
		}
		return name, rs, nil
	}
	return "", archiveSuffix{}, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, base)
}

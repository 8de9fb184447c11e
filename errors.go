// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import "errors"

var (
	// ErrArchiveNotFound is returned if the archive path does not reference an existing file.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrUnsupportedFormat is returned if the archive name does not end with a recognized suffix.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrMaxFilesExceeded is returned if the number of entries exceeds the configured maximum.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded is returned if the extracted size exceeds the configured maximum.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded is returned if the archive is larger than the configured maximum.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")

	// ErrPathTraversal is returned if an entry name or link target leaves the package directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnsupportedFile is returned for entry types that cannot be extracted,
	// e.g. FIFOs or devices, or symlinks when symlink extraction is denied.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// IsInputError reports whether err is caused by a rejected input, i.e. a
// missing archive or an unrecognized archive suffix. Such errors are raised
// before anything is written to disk.
func IsInputError(err error) bool {
	return errors.Is(err, ErrArchiveNotFound) || errors.Is(err, ErrUnsupportedFormat)
}

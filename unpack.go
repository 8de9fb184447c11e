// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Result describes the outcome of [Unpack].
type Result struct {
	// Package is the package name derived from the archive name.
	Package string

	// Destination is the package directory below the output root.
	Destination string

	// Skipped is true if the package directory existed before and nothing
	// was extracted.
	Skipped bool

	// Compression is the decompression algorithm that was used.
	Compression Compression

	// Entries is the number of processed archive entries.
	Entries int

	// TotalKnown is true if the reported percentage was based on a
	// counted number of entries rather than the placeholder total.
	TotalKnown bool

	// Metadata is the package description, if the package contains one.
	Metadata *Metadata
}

// Unpack extracts the compressed tar archive at archivePath into
// outputRoot/<package>, where <package> is the archive name without its
// recognized suffix (see [PackageName]).
//
// An archive with an unrecognized suffix is rejected with [ErrUnsupportedFormat],
// a missing archive with [ErrArchiveNotFound]. In both cases nothing is written.
//
// If the package directory already exists, the package is considered extracted:
// the returned [Result] has Skipped set and the directory is not touched.
//
// Any I/O error during decompression or extraction aborts the run. The partial
// package directory is left behind, unless [WithCleanupOnError] is set.
func Unpack(ctx context.Context, archivePath string, outputRoot string, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	// validate the archive name before touching the filesystem
	name, rule, err := matchSuffix(archivePath)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(archivePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, archivePath)
	case err != nil:
		return nil, fmt.Errorf("cannot access archive: %w", err)
	case stat.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrArchiveNotFound, archivePath)
	}

	t := cfg.Target()
	dst := filepath.Join(outputRoot, name)
	res := &Result{Package: name, Destination: dst}

	// an existing package directory counts as extracted
	if _, err := t.Lstat(dst); err == nil {
		cfg.Logger().Info("package already extracted", "package", name, "path", dst)
		res.Skipped = true
		return res, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot check package directory: %w", err)
	}

	// create the package directory before any entry is processed
	if err := t.CreateDir(dst, cfg.CustomCreateDirMode()); err != nil {
		return nil, fmt.Errorf("cannot create package directory: %w", err)
	}
	cfg.Logger().Info("created package directory", "path", dst)

	if err := unpackArchive(ctx, t, archivePath, dst, rule, cfg, res); err != nil {
		if cfg.CleanupOnError() {
			if rmErr := t.RemoveAll(dst); rmErr != nil {
				cfg.Logger().Error("cannot remove partial package", "path", dst, "error", rmErr)
			} else {
				cfg.Logger().Info("removed partial package", "path", dst)
			}
		}
		return res, err
	}

	return res, nil
}

// unpackArchive decompresses the archive and extracts its entries to dst.
func unpackArchive(ctx context.Context, t Target, archivePath string, dst string, rule archiveSuffix, cfg *Config, res *Result) error {
	// prepare telemetry capturing
	td := &TelemetryData{Package: res.Package, EntryTotal: UnknownTotal}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	total := UnknownTotal
	if cfg.CountEntries() {
		n, err := countEntries(archivePath, rule, cfg)
		if err != nil {
			return fatalError(td, "cannot count entries", err)
		}
		total = n
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fatalError(td, "cannot open archive", err)
	}
	defer f.Close()

	// limit input size
	limitedReader := newLimitErrorReader(f, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)

	stream, c, closeStream, err := decompressStream(bufio.NewReader(limitedReader), rule, cfg)
	if err != nil {
		return fatalError(td, "cannot start decompression", err)
	}
	defer closeStream()
	td.Compression = c
	res.Compression = c

	prog, err := extract(ctx, t, dst, res.Package, newTarWalker(stream, total), cfg, td)
	res.Entries = prog.Processed()
	res.TotalKnown = prog.TotalKnown()
	if err != nil {
		return err
	}
	cfg.ProgressSink().Finish(res.Package)

	// package metadata is informational only
	if _, ok := t.(*TargetDisk); ok {
		meta, err := ReadMetadata(dst)
		if err != nil {
			cfg.Logger().Warn("invalid package metadata", "package", res.Package, "error", err)
		}
		if meta != nil {
			if arch, ok := NormalizeArchitecture(meta.Architecture); ok {
				meta.Architecture = arch
			} else {
				cfg.Logger().Warn("unknown architecture, package has not passed apgcheck", "package", res.Package, "architecture", meta.Architecture)
			}
		}
		res.Metadata = meta
	}

	cfg.Logger().Info("extraction finished", "package", res.Package, "entries", res.Entries)
	return nil
}

// countEntries decompresses the archive once to count its entries.
func countEntries(archivePath string, rule archiveSuffix, cfg *Config) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("cannot open archive: %w", err)
	}
	defer f.Close()

	stream, _, closeStream, err := decompressStream(bufio.NewReader(newLimitErrorReader(f, cfg.MaxInputSize())), rule, cfg)
	if err != nil {
		return 0, err
	}
	defer closeStream()

	n, err := countTarEntries(stream)
	if err != nil {
		return 0, err
	}
	cfg.Logger().Debug("counted entries", "archive", archivePath, "entries", n)
	return n, nil
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// extract reads the entries from src in archive order and writes them below dst.
// After each entry the progress is reported to the configured sink under label.
func extract(ctx context.Context, t Target, dst string, label string, src archiveWalker, cfg *Config, td *TelemetryData) (*Progress, error) {
	total := UnknownTotal
	if n, ok := src.SizeHint(); ok {
		total = n
	}
	td.EntryTotal = total
	prog := newProgress(total)
	sink := cfg.ProgressSink()

	var objectCounter int64
	var extractedBytes int64
	var deferredDirs []archiveEntry

	cfg.Logger().Info("start extraction", "package", label, "total", total)
	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return prog, fatalError(td, "context error", err)
		}

		// get next entry
		ae, err := src.Next()

		switch {

		// if no more entries are found exit loop
		case errors.Is(err, io.EOF):
			applyDirAttributes(t, dst, deferredDirs, cfg)
			return prog, nil

		// return any other error, the stream cannot be resumed
		case err != nil:
			return prog, fatalError(td, "error reading archive", err)

		// if the header is nil, just skip it
		case ae == nil:
			continue
		}

		// tar specific: skip git comment file `pax_global_header`
		if ae.IsGlobalHeader() {
			continue
		}

		// check if maximum of objects is exceeded
		objectCounter++
		if err := cfg.CheckMaxFiles(objectCounter); err != nil {
			return prog, fatalError(td, "max objects check failed", err)
		}

		cfg.Logger().Debug("extract", "name", ae.Name())
		switch {

		case ae.IsDir():
			// the mode from the archive is applied after all entries are written
			if err := createDir(t, dst, ae.Name(), cfg.CustomCreateDirMode(), cfg); err != nil {
				if err := handleError(cfg, td, "failed to create directory", err); err != nil {
					return prog, err
				}
				break
			}
			deferredDirs = append(deferredDirs, ae)
			td.ExtractedDirs++

		case ae.IsRegular():
			// check extraction size before reading the content
			if err := cfg.CheckExtractionSize(extractedBytes + ae.Size()); err != nil {
				return prog, fatalError(td, "max extraction size exceeded", err)
			}

			fin, err := ae.Open()
			if err != nil {
				return prog, fatalError(td, "failed to open file", err)
			}

			remaining := int64(-1)
			if cfg.MaxExtractionSize() >= 0 {
				remaining = cfg.MaxExtractionSize() - extractedBytes
			}
			n, err := createFile(t, dst, ae.Name(), &streamReader{r: fin}, ae.Mode(), remaining, cfg)
			fin.Close()
			extractedBytes += n
			td.ExtractionSize = extractedBytes
			if err != nil {
				// a failed read leaves the stream in an undefined state
				if isStreamError(err) || errors.Is(err, ErrMaxExtractionSizeExceeded) {
					return prog, fatalError(td, "failed to create file", err)
				}
				if err := handleError(cfg, td, "failed to create file", err); err != nil {
					return prog, err
				}
				break
			}
			if !cfg.DropFileAttributes() {
				setFileTimes(t, dst, ae, cfg)
			}
			td.ExtractedFiles++

		case ae.IsSymlink():
			if err := createSymlink(t, dst, ae.Name(), ae.Linkname(), cfg); err != nil {
				if errors.Is(err, ErrUnsupportedFile) && cfg.ContinueOnUnsupportedFiles() {
					cfg.Logger().Info("skipped symlink extraction", "name", ae.Name(), "target", ae.Linkname())
					td.UnsupportedFiles++
					td.LastUnsupportedFile = ae.Name()
					break
				}
				if err := handleError(cfg, td, "failed to create symlink", err); err != nil {
					return prog, err
				}
				break
			}
			if !cfg.DropFileAttributes() {
				setFileTimes(t, dst, ae, cfg)
			}
			td.ExtractedSymlinks++

		case ae.IsHardlink():
			if err := createHardlink(t, dst, ae.Name(), ae.Linkname(), cfg); err != nil {
				if err := handleError(cfg, td, "failed to create hard link", err); err != nil {
					return prog, err
				}
				break
			}
			td.ExtractedHardlinks++

		default:
			// check if unsupported files should be skipped
			if cfg.ContinueOnUnsupportedFiles() {
				cfg.Logger().Info("skipped unsupported file", "name", ae.Name(), "type", ae.Type())
				td.UnsupportedFiles++
				td.LastUnsupportedFile = ae.Name()
				break
			}

			err := fmt.Errorf("%w: %s (type %q)", ErrUnsupportedFile, ae.Name(), ae.Type())
			if err := handleError(cfg, td, "cannot extract file", err); err != nil {
				return prog, err
			}
		}

		sink.Report(prog.Add(), label)
	}
}

// isStreamError reports whether err was raised while reading the archive
// rather than while writing to the target.
func isStreamError(err error) bool {
	var streamErr *streamError
	return errors.As(err, &streamErr)
}

// streamError marks an error of the decompressed archive stream.
type streamError struct {
	err error
}

func (e *streamError) Error() string {
	return e.err.Error()
}

func (e *streamError) Unwrap() error {
	return e.err
}

// streamReader tags all errors, except io.EOF, of the wrapped reader as
// [streamError], so that they can be told apart from write errors.
type streamReader struct {
	r io.Reader
}

func (s *streamReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &streamError{err}
	}
	return n, err
}

// handleError increases the error counter, sets the latest error and
// decides if extraction should continue.
func handleError(cfg *Config, td *TelemetryData, msg string, err error) error {

	// increase error counter and set error
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)

	// do not end on error
	if cfg.ContinueOnError() {
		cfg.Logger().Error(msg, "error", err)
		return nil
	}

	// end extraction on error
	return td.LastExtractionError
}

// fatalError records err like handleError, but always ends the extraction.
func fatalError(td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	return td.LastExtractionError
}

// setFileTimes applies the times of ae to the extracted file or symlink.
// Failures are logged only.
func setFileTimes(t Target, dst string, ae archiveEntry, cfg *Config) {
	if ae.ModTime().IsZero() {
		return
	}
	atime := ae.AccessTime()
	if atime.IsZero() {
		atime = ae.ModTime()
	}

	path := joinTarget(dst, ae.Name())
	var err error
	if ae.IsSymlink() {
		err = t.Lchtimes(path, atime, ae.ModTime())
	} else {
		err = t.Chtimes(path, atime, ae.ModTime())
	}
	if err != nil {
		cfg.Logger().Debug("cannot set file times", "name", ae.Name(), "error", err)
	}
}

// applyDirAttributes sets mode and times of the extracted directories. It runs
// after the last entry, so that files written into a directory neither fail on
// a read-only mode nor change its modification time.
func applyDirAttributes(t Target, dst string, dirs []archiveEntry, cfg *Config) {
	if cfg.DropFileAttributes() {
		return
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		ae := dirs[i]
		path := joinTarget(dst, ae.Name())
		if err := t.Chmod(path, ae.Mode()); err != nil {
			cfg.Logger().Debug("cannot set directory mode", "name", ae.Name(), "error", err)
		}
		setFileTimes(t, dst, ae, cfg)
	}
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for the extraction process.
// The configuration options can be adjusted using the option pattern style.
//
// The default configuration rejects entries that would be written outside of
// the package directory. The input size, the extraction size and the number of
// entries are unlimited, unless a limit is set.
type Config struct {
	// cleanupOnError removes the package directory if the extraction fails
	cleanupOnError bool

	// compression forces a decompression algorithm for every suffix
	compression Compression

	// continueOnError decides if the extraction should be continued even if an error occurred
	continueOnError bool

	// continueOnUnsupportedFiles offers the option to enable/disable skipping unsupported files
	continueOnUnsupportedFiles bool

	// countEntries enables a counting pass over the archive before the extraction
	countEntries bool

	// customCreateDirMode is the file mode for created directories, that are not defined in the archive (respecting umask)
	customCreateDirMode fs.FileMode

	// denySymlinkExtraction offers the option to enable/disable the extraction of symlinks
	denySymlinkExtraction bool

	// dropFileAttributes is a flag drop the file attributes of the extracted files
	dropFileAttributes bool

	// insecureAllowTraversal disables the path traversal checks
	insecureAllowTraversal bool

	// logger stream for extraction
	logger logger

	// maxExtractionSize is the maximum size of all extracted files.
	// A negative value disables the check.
	maxExtractionSize int64

	// maxFiles is the maximum of entries (including folder and symlinks) in an archive.
	// A negative value disables the check.
	maxFiles int64

	// maxInputSize is the maximum size of the input
	// A negative value disables the check.
	maxInputSize int64

	// overwrite replaces files written by earlier entries of the same archive
	overwrite bool

	// progressSink receives the progress of the extraction
	progressSink ProgressSink

	// target is the filesystem the package is extracted to
	target Target

	// telemetryHook is a function to consume telemetry data after finished extraction
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() < 0 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {

	// check if disabled
	if c.MaxExtractionSize() < 0 {
		return nil
	}

	// check value
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// CleanupOnError returns true if a package directory created by a failed
// extraction should be removed, so that a later run does not treat the
// partial output as already extracted.
func (c *Config) CleanupOnError() bool {
	return c.cleanupOnError
}

// Compression returns the forced compression, or [CompressionAuto] if the
// compression is selected per archive.
func (c *Config) Compression() Compression {
	return c.compression
}

// ContinueOnError returns true if the extraction should continue on error.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// ContinueOnUnsupportedFiles returns true if unsupported files, e.g., FIFO, block or
// character devices, should be skipped.
//
// If symlinks are not allowed and a symlink is found, it is considered an unsupported
// file.
func (c *Config) ContinueOnUnsupportedFiles() bool {
	return c.continueOnUnsupportedFiles
}

// CountEntries returns true if the entries of the archive are counted before
// the extraction, which makes the reported percentage exact.
func (c *Config) CountEntries() bool {
	return c.countEntries
}

// CustomCreateDirMode returns the file mode for created directories,
// that are not defined in the archive. (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// DenySymlinkExtraction returns true if symlinks are NOT allowed.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// DropFileAttributes returns true if the file attributes should be dropped.
func (c *Config) DropFileAttributes() bool {
	return c.dropFileAttributes
}

// InsecureAllowTraversal returns true if entry names are used verbatim
// without path traversal and symlink checks.
func (c *Config) InsecureAllowTraversal() bool {
	return c.insecureAllowTraversal
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of entries (including folder and symlinks) in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if a later entry may replace a file of an earlier
// entry with the same name.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// ProgressSink returns the progress sink.
func (c *Config) ProgressSink() ProgressSink {
	if c.progressSink == nil {
		return NopSink{}
	}
	return c.progressSink
}

// Target returns the extraction target.
func (c *Config) Target() Target {
	if c.target == nil {
		return NewTargetDisk()
	}
	return c.target
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultCleanupOnError             = false // leave partial output
	defaultCompression                = CompressionAuto
	defaultContinueOnError            = false // stop on error and return error
	defaultContinueOnUnsupportedFiles = false // stop on unsupported files and return error
	defaultCountEntries               = false // single pass, percentage is estimated
	defaultCustomCreateDirMode        = 0755  // default directory permissions rwxr-xr-x
	defaultDenySymlinkExtraction      = false // allow symlink extraction
	defaultDropFileAttributes         = false // keep modes and times from archive
	defaultInsecureAllowTraversal     = false // reject traversal
	defaultMaxFiles                   = -1    // no limit
	defaultMaxExtractionSize          = -1    // no limit
	defaultMaxInputSize               = -1    // no limit
	defaultOverwrite                  = true  // later entries replace earlier ones, like tar does
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		cleanupOnError:             defaultCleanupOnError,
		compression:                defaultCompression,
		continueOnError:            defaultContinueOnError,
		continueOnUnsupportedFiles: defaultContinueOnUnsupportedFiles,
		countEntries:               defaultCountEntries,
		customCreateDirMode:        defaultCustomCreateDirMode,
		denySymlinkExtraction:      defaultDenySymlinkExtraction,
		dropFileAttributes:         defaultDropFileAttributes,
		insecureAllowTraversal:     defaultInsecureAllowTraversal,
		logger:                     defaultLogger,
		maxFiles:                   defaultMaxFiles,
		maxExtractionSize:          defaultMaxExtractionSize,
		maxInputSize:               defaultMaxInputSize,
		overwrite:                  defaultOverwrite,
		progressSink:               NopSink{},
		target:                     NewTargetDisk(),
		telemetryHook:              defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithCleanupOnError options pattern function to remove the package directory
// if the extraction fails.
func WithCleanupOnError(cleanup bool) ConfigOption {
	return func(c *Config) {
		c.cleanupOnError = cleanup
	}
}

// WithCompression options pattern function to force a compression for all
// archive suffixes. [CompressionAuto] restores the detection.
func WithCompression(compression Compression) ConfigOption {
	return func(c *Config) {
		c.compression = compression
	}
}

// WithContinueOnError options pattern function to continue on error during extraction. If set to true,
// the error is logged and the extraction continues. If set to false, the extraction stops and returns the error.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithContinueOnUnsupportedFiles options pattern function to
// enable/disable skipping unsupported files. An unsupported file is a file
// that is not supported by the extraction algorithm. If symlinks are not allowed
// and a symlink is found, it is considered an unsupported file.
func WithContinueOnUnsupportedFiles(ctd bool) ConfigOption {
	return func(c *Config) {
		c.continueOnUnsupportedFiles = ctd
	}
}

// WithCountEntries options pattern function to count the entries of the
// archive in a first pass. The archive is decompressed twice.
func WithCountEntries(count bool) ConfigOption {
	return func(c *Config) {
		c.countEntries = count
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories, that are not defined in the archive. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithDropFileAttributes options pattern function to drop the
// file attributes of the extracted files.
func WithDropFileAttributes(drop bool) ConfigOption {
	return func(c *Config) {
		c.dropFileAttributes = drop
	}
}

// WithInsecureAllowTraversal options pattern function to extract entries with
// their embedded path verbatim, even if the path leaves the package directory.
func WithInsecureAllowTraversal(allow bool) ConfigOption {
	return func(c *Config) {
		c.insecureAllowTraversal = allow
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (negative value disables the check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted, files, directories
// and symlinks during the extraction. (negative value disables the check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for extraction input file. (negative value disables the check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function specify if later entries may replace
// files of earlier entries with the same name.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithProgressSink options pattern function to set the [ProgressSink].
func WithProgressSink(sink ProgressSink) ConfigOption {
	return func(c *Config) {
		c.progressSink = sink
	}
}

// WithTarget options pattern function to set the [Target] the package is
// extracted to.
func WithTarget(target Target) ConfigOption {
	return func(c *Config) {
		c.target = target
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

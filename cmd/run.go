// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/tulpar/apgunpack"
)

// CLI are the cli parameters for the apgunpack binary
type CLI struct {
	Input             string           `short:"i" required:"" help:"Path to the archive (${suffixes})."`
	Output            string           `short:"o" required:"" help:"Directory in which the package directory is created."`
	Cleanup           bool             `help:"Remove the package directory if the extraction fails."`
	Compression       string           `optional:"" default:"auto" enum:"auto,xz,gzip,zstd,bzip2,lz4" help:"Force a decompression algorithm (${enum})."`
	ContinueOnError   bool             `short:"C" help:"Continue extraction on error."`
	CountEntries      bool             `short:"c" help:"Count the archive entries first to show an exact percentage."`
	DenySymlinks      bool             `short:"D" help:"Deny symlink extraction."`
	Insecure          bool             `help:"[Dangerous!] Extract entry paths verbatim, even if they leave the package directory."`
	MaxFiles          int64            `optional:"" default:"-1" help:"Maximum entries that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"-1" help:"Maximum extraction size that is allowed (in bytes). (disable check: -1)"`
	MaxExtractionTime int64            `optional:"" default:"-1" help:"Maximum time that an extraction should take (in seconds). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"-1" help:"Maximum input size that is allowed (in bytes). (disable check: -1)"`
	Metrics           bool             `short:"M" optional:"" default:"false" help:"Print metrics to log after extraction."`
	Strict            bool             `help:"Fail if the archive is missing or its format is not supported."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run the entrypoint into apgunpack as a cli tool. It returns the exit code.
func Run(version, commit, date string) int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, version, commit, date)
}

// run parses args and performs the extraction. Missing archives and
// unsupported formats are reported on stderr, but only fail with --strict.
func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, version, commit, date string) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name(filepath.Base(os.Args[0])),
		kong.Description("Unpacks compressed tar packages into a package directory"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Vars{
			"suffixes": strings.Join(apgunpack.RecognizedSuffixes(), ", "),
			"version":  fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	_, err = parser.Parse(args)

	// --help and --version end here
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		parser.FatalIfErrorf(err)
		return 1
	}

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Metrics {
		logLevel = slog.LevelInfo
	}
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// setup metrics hook
	metricsToLog := func(ctx context.Context, td *apgunpack.TelemetryData) {
		if cli.Metrics {
			logger.Info("extraction finished", "metrics", td)
		}
	}

	compression, err := apgunpack.ParseCompression(cli.Compression)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	// process cli params
	config := apgunpack.NewConfig(
		apgunpack.WithCleanupOnError(cli.Cleanup),
		apgunpack.WithCompression(compression),
		apgunpack.WithContinueOnError(cli.ContinueOnError),
		apgunpack.WithCountEntries(cli.CountEntries),
		apgunpack.WithDenySymlinkExtraction(cli.DenySymlinks),
		apgunpack.WithInsecureAllowTraversal(cli.Insecure),
		apgunpack.WithLogger(logger),
		apgunpack.WithMaxExtractionSize(cli.MaxExtractionSize),
		apgunpack.WithMaxFiles(cli.MaxFiles),
		apgunpack.WithMaxInputSize(cli.MaxInputSize),
		apgunpack.WithProgressSink(apgunpack.NewTerminalSink(stdout)),
		apgunpack.WithTelemetryHook(metricsToLog),
	)

	if cli.MaxExtractionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second*time.Duration(cli.MaxExtractionTime))
		defer cancel()
	}

	// extract archive
	res, err := apgunpack.Unpack(ctx, cli.Input, cli.Output, config)
	switch {
	case apgunpack.IsInputError(err):
		fmt.Fprintf(stderr, "error: %s\n", err)
		if cli.Strict {
			return 1
		}
		return 0
	case err != nil:
		fmt.Fprintln(stderr, errors.Wrapf(err, "error during extraction of %s", cli.Input))
		return 1
	case res.Skipped:
		fmt.Fprintf(stdout, "Package '%s' is already unpacked in %s\n", res.Package, res.Destination)
	case res.Metadata != nil:
		logger.Info("package metadata", "name", res.Metadata.Name, "version", res.Metadata.Version,
			"base_version", res.Metadata.BaseVersion(), "architecture", res.Metadata.Architecture)
	}
	return 0
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package apgunpack unpacks compressed tar archives into a package directory.
//
// An archive named <name>.tar.xz, <name>.tar.gz or <name>.apg is extracted into
// <output>/<name>. The decompressed stream is read once, entry by entry, and
// every extracted entry is reported to a [ProgressSink]. An existing package
// directory is treated as already extracted and left untouched.
//
// Configuration is done using the [Config], which is created with [NewConfig] and
// adjusted with options in an option pattern style. Telemetry data is captured
// during the extraction and handed to the configured [TelemetryHook].
package apgunpack

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package apgunpack

import (
	"fmt"
	"runtime"
	"time"
)

// lchtimes is not available on this platform.
func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("Lchtimes is not supported on this platform (%s)", runtime.GOOS)
}

// canMaintainSymlinkTimestamps reports whether symlink times can be set.
const canMaintainSymlinkTimestamps = false

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"

	"github.com/tulpar/apgunpack/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the apgunpack cli
func main() {
	os.Exit(cmd.Run(version, commit, date))
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MetadataFile is the name of the package description at the root of a package.
const MetadataFile = "metadata.json"

// Metadata describes a package, as read from its [MetadataFile]. [Unpack]
// normalizes the architecture with [NormalizeArchitecture] and keeps unknown
// values unchanged.
type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Architecture string   `json:"architecture"`
	Description  string   `json:"description,omitempty"`
	Maintainer   string   `json:"maintainer,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// BaseVersion returns the version without build metadata ("+...") and
// pre-release ("-...") suffixes.
func (m *Metadata) BaseVersion() string {
	v := m.Version
	if i := strings.IndexByte(v, '+'); i >= 0 {
		v = v[:i]
	}
	if i := strings.IndexByte(v, '-'); i >= 0 {
		v = v[:i]
	}
	return v
}

// NormalizeArchitecture maps an architecture name to one of x86_64, i386 or
// aarch64. The boolean is false if arch cannot be mapped.
func NormalizeArchitecture(arch string) (string, bool) {
	switch {
	case arch == "x86_64" || arch == "aarch64":
		return arch, true
	case strings.Contains(arch, "amd"):
		return "x86_64", true
	case strings.Contains(arch, "x86"):
		return "i386", true
	case strings.Contains(arch, "arm") || strings.Contains(arch, "aarch"):
		return "aarch64", true
	}
	return "", false
}

// ReadMetadata reads the [MetadataFile] from the package directory dir.
// If the package has no metadata, nil is returned without error.
func ReadMetadata(dir string) (*Metadata, error) {
	b, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", MetadataFile, err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, fmt.Errorf("%s is empty", MetadataFile)
	}

	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", MetadataFile, err)
	}
	return &m, nil
}

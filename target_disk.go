// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// TargetDisk is the struct type that holds all information for interacting with the filesystem
type TargetDisk struct{}

// NewTargetDisk creates a new target that writes to the local filesystem.
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates a directory at the specified path with the specified mode. If the directory already
// exists, nothing is done.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory (%w)", err)
	}
	return nil
}

// CreateFile creates a file at the specified path with src as content.
// An existing symlink at path is replaced instead of being followed.
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	// Check for path validity and if file existence+overwrite
	if stat, err := os.Lstat(path); !os.IsNotExist(err) {

		// something wrong with path
		if err != nil {
			return 0, fmt.Errorf("invalid path: %w", err)
		}

		// check for overwrite
		if !overwrite {
			return 0, fmt.Errorf("file already exists")
		}

		if stat.IsDir() {
			return 0, fmt.Errorf("cannot replace directory with file")
		}

		// drop the old entry, so that links are not followed and the new mode applies
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("failed to overwrite file: %w", err)
		}
	}

	// create dst file
	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	// write data to file
	n, err := io.Copy(limitWriter(dstFile, maxSize), src)
	if err != nil {
		dstFile.Close()
		return n, fmt.Errorf("failed to write file: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close file: %w", err)
	}
	return n, nil
}

// CreateSymlink creates a symbolic link from newname to oldname. If
// newname already exists and overwrite is false, an error should be returned.
func (d *TargetDisk) CreateSymlink(oldname string, newname string, overwrite bool) error {
	if err := d.prepareLink(newname, overwrite); err != nil {
		return err
	}

	if err := os.Symlink(oldname, newname); err != nil {
		return fmt.Errorf("failed to create symlink: %w", err)
	}
	return nil
}

// CreateHardlink creates newname as a hard link to oldname. If newname
// already exists and overwrite is false, an error should be returned.
func (d *TargetDisk) CreateHardlink(oldname string, newname string, overwrite bool) error {
	if err := d.prepareLink(newname, overwrite); err != nil {
		return err
	}

	if err := os.Link(oldname, newname); err != nil {
		return fmt.Errorf("failed to create hard link: %w", err)
	}
	return nil
}

// prepareLink removes an existing entry at name if overwrite is allowed.
func (d *TargetDisk) prepareLink(name string, overwrite bool) error {
	stat, err := os.Lstat(name)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !overwrite {
		return fmt.Errorf("file already exist")
	}
	if stat.IsDir() {
		return fmt.Errorf("cannot replace directory with link")
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}
	return nil
}

// Lstat returns the FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Chmod changes the mode of the named file to mode.
func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode.Perm())
}

// Chtimes changes the access and modification times of the named file.
func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Lchtimes changes the access and modification times of the named symlink.
// It is a no-op on platforms that cannot change symlink times.
func (d *TargetDisk) Lchtimes(name string, atime, mtime time.Time) error {
	if canMaintainSymlinkTimestamps {
		return lchtimes(name, atime, mtime)
	}
	return nil
}

// RemoveAll removes path and any children it contains.
func (d *TargetDisk) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

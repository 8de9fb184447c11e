// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Target specifies all function that are needed to be implemented to extract contents from an archive
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. The
	// size of the file should not exceed maxSize. The number of bytes written is returned, also together with an
	// error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates a directory and all missing parents at the specified path with the specified mode.
	// If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error. If newname already exists and overwrite is true, the existing entry is replaced.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// CreateHardlink creates newname as a hard link to the file oldname. If newname already exists and overwrite
	// is false, the function returns an error.
	CreateHardlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path
	// and for the existence of the package directory.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod. Main purpose is to set the file mode of a directory.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes. Main purpose is to set the file times of a file or directory.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the file times of a symlink without following it.
	Lchtimes(name string, atime, mtime time.Time) error

	// RemoveAll see docs for os.RemoveAll. Main purpose is to remove a partially extracted package.
	RemoveAll(path string) error
}

// localPath converts an archive path with forward slashes into a platform
// specific relative path. Leading slashes are dropped.
func localPath(name string) string {
	parts := strings.Split(name, "/")
	return filepath.Join(parts...)
}

// joinTarget returns the path of the archive entry name below dst.
func joinTarget(dst string, name string) string {
	return filepath.Join(dst, localPath(name))
}

// createFile is a wrapper around the CreateFile function
//
// If the name is empty, the function returns an error.
//
// If the directory for the file does not exist, it will be created with the config.CustomCreateDirMode().
//
// If the path contains path traversal or a symlink, the function returns an error, unless
// config.InsecureAllowTraversal() returns true.
//
// If the file is created successfully, the function returns the number of bytes written and nil.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	// check if a name is provided
	if len(name) == 0 {
		return 0, fmt.Errorf("cannot create file without name")
	}
	name = localPath(name)
	if name == "." {
		return 0, fmt.Errorf("cannot create file without name")
	}

	// ensures that the directory exists and is safe to write to
	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return 0, fmt.Errorf("cannot create directory: %w", err)
	}

	// ensure that if the file exist that it is not a symlink
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return 0, fmt.Errorf("security check path failed: %w", err)
	}
	return t.CreateFile(filepath.Join(dst, name), src, mode, cfg.Overwrite(), maxSize)
}

// createDir is a wrapper around the CreateDir function
//
// If the path contains path traversal or a symlink, the function returns an error, unless
// config.InsecureAllowTraversal() returns true.
//
// If the directory is created successfully, the function returns nil.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	name = localPath(name)

	// no action needed
	if name == "." {
		return nil
	}

	// perform security check to ensure that the path is safe to write to
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}

	// entries are written below the directory, so it must not be a symlink itself
	if !cfg.InsecureAllowTraversal() {
		if link, err := isSymlink(t, filepath.Join(dst, name)); err != nil {
			return fmt.Errorf("security check path failed: %w", err)
		} else if link {
			return fmt.Errorf("%w: symlink in path %s", ErrPathTraversal, name)
		}
	}

	return t.CreateDir(filepath.Join(dst, name), mode)
}

// createSymlink is a wrapper around the CreateSymlink function
//
// It checks if the symlink extraction is allowed and if the link target stays
// within dst. An absolute link target is rejected, unless
// config.InsecureAllowTraversal() returns true.
//
// If the directory for the symlink does not exist, it will be created with the config.CustomCreateDirMode().
func createSymlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	// check if symlink extraction is denied
	if cfg.DenySymlinkExtraction() {
		return fmt.Errorf("%w: symlink %s", ErrUnsupportedFile, name)
	}

	// check if a name is provided
	if len(name) == 0 {
		return fmt.Errorf("empty name")
	}
	name = localPath(name)

	// Check if link target is absolute path
	if filepath.IsAbs(linkTarget) && !cfg.InsecureAllowTraversal() {
		return fmt.Errorf("%w: symlink with absolute path as target: %s", ErrPathTraversal, linkTarget)
	}

	// create link directory && check for traversal in file name
	linkDirectory := filepath.Dir(name)
	if err := createDir(t, dst, linkDirectory, cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory (%s) for symlink: %w", fmt.Sprintf("%s%s", linkDirectory, string(os.PathSeparator)), err)
	}

	// check link target for traversal
	if !filepath.IsAbs(linkTarget) && !cfg.InsecureAllowTraversal() {
		if err := linkTargetCheck(t, dst, linkDirectory, linkTarget); err != nil {
			return fmt.Errorf("symlink target security check path failed: %w", err)
		}
	}

	return t.CreateSymlink(linkTarget, filepath.Join(dst, name), cfg.Overwrite())
}

// createHardlink is a wrapper around the CreateHardlink function
//
// The link target of a tar hard link is the archive path of an earlier entry,
// so both name and linkTarget are resolved relative to dst and checked for
// path traversal.
func createHardlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	if len(name) == 0 || len(linkTarget) == 0 {
		return fmt.Errorf("empty name")
	}
	name = localPath(name)
	linkTarget = localPath(linkTarget)

	if err := createDir(t, dst, filepath.Dir(name), cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory for hard link: %w", err)
	}
	if err := securityCheck(t, dst, name, cfg); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}
	if err := securityCheck(t, dst, linkTarget, cfg); err != nil {
		return fmt.Errorf("hard link target security check path failed: %w", err)
	}

	return t.CreateHardlink(filepath.Join(dst, linkTarget), filepath.Join(dst, name), cfg.Overwrite())
}

// securityCheck checks if path, relative to dst, contains path traversal
// and if the path contains a symlink.
//
// The function returns an error if the path leaves dst or if a symlink is
// detected in one of its directories. No checks are performed if
// config.InsecureAllowTraversal() returns true.
func securityCheck(t Target, dst string, path string, config *Config) error {
	if config.InsecureAllowTraversal() {
		return nil
	}

	// clean the target
	path = localPath(path)

	// get relative path from base to new directory target
	rel, err := filepath.Rel(dst, filepath.Join(dst, path))
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}
	// check if the relative path is local
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}

	// check each parent dir in path, the last element may be replaced
	targetPathElements := strings.Split(path, string(os.PathSeparator))
	for i := 0; i < len(targetPathElements)-1; i++ {

		// assemble path
		subDirs := filepath.Join(targetPathElements[0 : i+1]...)
		checkDir := filepath.Join(dst, subDirs)

		isSymlink, err := isSymlink(t, checkDir)
		if err != nil {
			return fmt.Errorf("failed to check symlink: %w", err)
		}
		if isSymlink {
			return fmt.Errorf("%w: symlink in path %s", ErrPathTraversal, subDirs)
		}
	}

	return nil
}

// linkTargetCheck walks linkTarget element by element, starting at linkDir
// below dst. The walk must not leave dst and must not pass through an existing
// symlink, whose destination is unknown to a lexical check. The last element
// may be a symlink, so link chains stay possible.
func linkTargetCheck(t Target, dst string, linkDir string, linkTarget string) error {
	var resolved []string
	if linkDir != "." {
		resolved = strings.Split(linkDir, string(os.PathSeparator))
	}

	elements := strings.Split(filepath.ToSlash(linkTarget), "/")
	for i, e := range elements {
		switch e {
		case "", ".":
			continue
		case "..":
			if len(resolved) == 0 {
				return fmt.Errorf("%w: %s", ErrPathTraversal, linkTarget)
			}
			resolved = resolved[:len(resolved)-1]
			continue
		}

		resolved = append(resolved, e)
		if i == len(elements)-1 {
			break
		}
		current := filepath.Join(resolved...)
		link, err := isSymlink(t, filepath.Join(dst, current))
		if err != nil {
			return fmt.Errorf("failed to check symlink: %w", err)
		}
		if link {
			return fmt.Errorf("%w: symlink %s in link target %s", ErrPathTraversal, current, linkTarget)
		}
	}
	return nil
}

// isSymlink checks if path is a symlink
//
// The function returns true if the path is a symlink, otherwise false. A path
// that does not exist is not a symlink.
func isSymlink(t Target, path string) (bool, error) {
	stat, err := t.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check path: %w", err)
	}
	return stat.Mode()&os.ModeSymlink == os.ModeSymlink, nil
}

// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package apgunpack

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecurityCheck(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		opts        []ConfigOption
		expectError bool
	}{
		{name: "plain file", path: "file"},
		{name: "nested file", path: "a/b/c"},
		{name: "dot segments within dst", path: "a/./b/../c"},
		{name: "leading slash is dropped", path: "/abs"},
		{name: "parent traversal", path: "../file", expectError: true},
		{name: "nested traversal", path: "a/../../file", expectError: true},
		{name: "deep traversal", path: "a/b/../../../etc/passwd", expectError: true},
		{name: "traversal allowed when insecure", path: "../file", opts: []ConfigOption{WithInsecureAllowTraversal(true)}},
		{name: "symlink in path", path: "link/file", expectError: true},
		{name: "symlink as last element", path: "link"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testDir := t.TempDir()
			if err := os.Symlink(os.TempDir(), filepath.Join(testDir, "link")); err != nil {
				t.Fatalf("error creating symlink: %v", err)
			}

			err := securityCheck(NewTargetDisk(), testDir, test.path, NewConfig(test.opts...))
			if (err != nil) != test.expectError {
				t.Fatalf("securityCheck(%q) error = %v, expectError %v", test.path, err, test.expectError)
			}
			if err != nil && !errors.Is(err, ErrPathTraversal) {
				t.Errorf("securityCheck(%q) error = %v, want %v", test.path, err, ErrPathTraversal)
			}
		})
	}
}

func TestCreateDirRejectsSymlink(t *testing.T) {
	testDir := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(testDir, "link")); err != nil {
		t.Fatalf("error creating symlink: %v", err)
	}

	err := createDir(NewTargetDisk(), testDir, "link", 0755, NewConfig())
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("createDir() error = %v, want %v", err, ErrPathTraversal)
	}
}

func TestCreateSymlink(t *testing.T) {
	tests := []struct {
		name       string
		linkName   string
		linkTarget string
		opts       []ConfigOption
		wantErr    error
	}{
		{
			name:       "relative target",
			linkName:   "dir/link",
			linkTarget: "../file",
		},
		{
			name:       "symlink chain",
			linkName:   "lib.so",
			linkTarget: "lib.so.1",
		},
		{
			name:       "target leaves dst",
			linkName:   "link",
			linkTarget: "../outside",
			wantErr:    ErrPathTraversal,
		},
		{
			name:       "absolute target",
			linkName:   "link",
			linkTarget: "/etc/passwd",
			wantErr:    ErrPathTraversal,
		},
		{
			name:       "absolute target when insecure",
			linkName:   "link",
			linkTarget: "/etc/passwd",
			opts:       []ConfigOption{WithInsecureAllowTraversal(true)},
		},
		{
			name:       "target resolves through existing symlink",
			linkName:   "esc",
			linkTarget: "sub/to-parent/../..",
			wantErr:    ErrPathTraversal,
		},
		{
			name:       "target resolves through existing symlink when insecure",
			linkName:   "esc",
			linkTarget: "sub/to-parent/../..",
			opts:       []ConfigOption{WithInsecureAllowTraversal(true)},
		},
		{
			name:       "target points to existing symlink",
			linkName:   "parent",
			linkTarget: "sub/to-parent",
		},
		{
			name:       "symlinks denied",
			linkName:   "link",
			linkTarget: "file",
			opts:       []ConfigOption{WithDenySymlinkExtraction(true)},
			wantErr:    ErrUnsupportedFile,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testDir := t.TempDir()
			target := NewTargetDisk()
			if err := os.Symlink("lib.so.1.2", filepath.Join(testDir, "lib.so.1")); err != nil {
				t.Fatalf("error creating symlink: %v", err)
			}
			if err := os.Mkdir(filepath.Join(testDir, "sub"), 0755); err != nil {
				t.Fatalf("error creating directory: %v", err)
			}
			if err := os.Symlink("..", filepath.Join(testDir, "sub", "to-parent")); err != nil {
				t.Fatalf("error creating symlink: %v", err)
			}

			err := createSymlink(target, testDir, test.linkName, test.linkTarget, NewConfig(test.opts...))
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("createSymlink() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("createSymlink() error = %v", err)
			}

			got, err := os.Readlink(filepath.Join(testDir, test.linkName))
			if err != nil {
				t.Fatalf("error reading link: %v", err)
			}
			if got != test.linkTarget {
				t.Errorf("link target = %q, want %q", got, test.linkTarget)
			}
		})
	}
}

func TestCreateHardlink(t *testing.T) {
	testDir := t.TempDir()
	target := NewTargetDisk()
	cfg := NewConfig()
	newTestFile(t, filepath.Join(testDir, "dir", "file"), []byte("data"))

	if err := createHardlink(target, testDir, "other/hard", "dir/file", cfg); err != nil {
		t.Fatalf("createHardlink() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(testDir, "other", "hard"))
	if err != nil || string(data) != "data" {
		t.Errorf("hard link content = %q, %v", data, err)
	}

	if err := createHardlink(target, testDir, "hard", "../file", cfg); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("createHardlink() error = %v, want %v", err, ErrPathTraversal)
	}
}

func TestCreateFile(t *testing.T) {
	testDir := t.TempDir()
	target := NewTargetDisk()
	cfg := NewConfig()

	// missing directories are created
	n, err := createFile(target, testDir, "a/b/file", strings.NewReader("data"), 0640, -1, cfg)
	if err != nil || n != 4 {
		t.Fatalf("createFile() = %d, %v", n, err)
	}
	stat, err := os.Stat(filepath.Join(testDir, "a", "b", "file"))
	if err != nil {
		t.Fatalf("error reading file: %v", err)
	}
	if stat.Mode().Perm() != 0640 {
		t.Errorf("file mode = %v, want %v", stat.Mode().Perm(), os.FileMode(0640))
	}

	// empty names are rejected
	if _, err := createFile(target, testDir, "", strings.NewReader("data"), 0640, -1, cfg); err == nil {
		t.Errorf("createFile() with empty name expected an error")
	}

	// traversal is rejected
	if _, err := createFile(target, testDir, "../file", strings.NewReader("data"), 0640, -1, cfg); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("createFile() error = %v, want %v", err, ErrPathTraversal)
	}
}

func TestTargetDiskCreateFile(t *testing.T) {
	tests := []struct {
		name        string
		overwrite   bool
		maxSize     int64
		existing    string
		expectError bool
		want        string
	}{
		{name: "new file", overwrite: true, maxSize: -1, want: "new content"},
		{name: "overwrite file", overwrite: true, maxSize: -1, existing: "file", want: "new content"},
		{name: "no overwrite", overwrite: false, maxSize: -1, existing: "file", expectError: true, want: "old content"},
		{name: "replace symlink without following", overwrite: true, maxSize: -1, existing: "symlink", want: "new content"},
		{name: "size limit", overwrite: true, maxSize: 3, expectError: true, want: "new"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			testDir := t.TempDir()
			path := filepath.Join(testDir, "file")
			outside := filepath.Join(t.TempDir(), "outside")
			newTestFile(t, outside, []byte("outside content"))

			switch test.existing {
			case "file":
				newTestFile(t, path, []byte("old content"))
			case "symlink":
				if err := os.Symlink(outside, path); err != nil {
					t.Fatalf("error creating symlink: %v", err)
				}
			}

			_, err := NewTargetDisk().CreateFile(path, bytes.NewReader([]byte("new content")), 0644, test.overwrite, test.maxSize)
			if (err != nil) != test.expectError {
				t.Fatalf("CreateFile() error = %v, expectError %v", err, test.expectError)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("error reading file: %v", err)
			}
			if string(data) != test.want {
				t.Errorf("content = %q, want %q", data, test.want)
			}
			data, _ = os.ReadFile(outside)
			if string(data) != "outside content" {
				t.Errorf("file outside of dst was modified: %q", data)
			}
		})
	}
}

func FuzzSecurityCheckDisk(f *testing.F) {
	f.Add("file")
	f.Add("../file")
	f.Add("a/b/../../c")
	f.Add("/abs/path")

	f.Fuzz(func(t *testing.T, path string) {
		testDir := t.TempDir()
		if err := securityCheck(NewTargetDisk(), testDir, path, NewConfig()); err != nil {
			return
		}

		// an accepted path stays below testDir
		rel, err := filepath.Rel(testDir, joinTarget(testDir, path))
		if err != nil || !filepath.IsLocal(rel) {
			t.Errorf("securityCheck(%q) accepted a path outside of dst", path)
		}
	})
}

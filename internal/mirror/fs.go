// Copyright (c) 2025 Resmirror

package mirror

import (
	"errors"
	"fmt"
	"os"

	"github.com/otiai10/copy"
)

// ErrSourceMissing is returned when a file to mirror was never written by the build
var ErrSourceMissing = errors.New("source file missing")

// FS is the filesystem surface the mirror needs
type FS interface {
	Exists(path string) bool
	EnsureDir(path string) error
	CopyFile(src, dst string) error
	RemoveAll(path string) error
}

// OSFS implements FS on the local disk
type OSFS struct{}

// Exists reports whether path exists
func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates path and any missing parents
func (OSFS) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// CopyFile copies src to dst verbatim
func (OSFS) CopyFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return err
	}
	return copy.Copy(src, dst, copy.Options{Sync: true})
}

// RemoveAll removes path recursively; a missing path is not an error
func (OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

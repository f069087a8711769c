// Package filesystem implements ports.FileSystem on the real OS.
package filesystem

import (
	"os"

	"github.com/DavidVonDerau/merged-lands/internal/ports"
)

// Real implements ports.FileSystem with direct OS calls.
type Real struct{}

// New creates a Real filesystem.
func New() *Real {
	return &Real{}
}

// ReadFile reads a file and returns its contents.
func (fs *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file.
func (fs *Real) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Exists checks whether a file or directory exists.
func (fs *Real) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// MkdirAll creates a directory and any missing parents.
func (fs *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// IsDir reports whether a path is a directory.
func (fs *Real) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Ensure Real implements FileSystem.
var _ ports.FileSystem = (*Real)(nil)

package ports

import "os"

// FileSystem provides the file system operations the pipeline needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	MkdirAll(path string, perm os.FileMode) error
	IsDir(path string) bool
}

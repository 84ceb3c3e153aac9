package storage // import "github.com/Xunop/e-library/internal/storage"

import "io"

// Storage keeps the book files, addressed by slash separated paths relative
// to its root.
type Storage interface {
	// Resolve returns the filesystem path of relPath, "" if it escapes the root
	Resolve(relPath string) string
	// Store writes content to field/filename, overwriting any existing file
	Store(field, filename string, content io.Reader) (string, error)
	// Remove deletes the file, a missing file is not an error
	Remove(relPath string) error
	// SizeOf returns the human readable size of the file
	SizeOf(relPath string) (string, error)
	// Exists reports whether relPath is a regular file
	Exists(relPath string) bool
}

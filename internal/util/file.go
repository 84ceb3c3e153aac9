package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders size with binary units and one decimal, e.g. "2.0 KB".
func FormatFileSize(size int64) string {
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// WriteAtomic writes r to a temporary file next to target and renames it over
// target, so readers see either the old content or the complete new one.
func WriteAtomic(target string, r io.Reader) (int64, error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, target)
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return n, nil
}

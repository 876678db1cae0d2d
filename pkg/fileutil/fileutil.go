package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rohmanhakim/tariff-mirror/pkg/failure"
)

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// Exists reports whether a regular file exists at the given path.
// Directories do not count.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// FileSize returns the byte size of the file at the given path.
func FileSize(path string) (int64, failure.ClassifiedError) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseStatError,
		}
	}
	return info.Size(), nil
}

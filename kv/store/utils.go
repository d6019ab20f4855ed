package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ResolveDiskPath normalizes user-provided paths and applies fast-fail defaults.
// Empty strings revert to the default DB file path.
func ResolveDiskPath(dbPath string) (string, error) {
	trimmedPath := strings.TrimSpace(dbPath)
	if trimmedPath == "" {
		defaultPath, err := filepath.Abs(DefaultDiskStorePath)
		if err != nil {
			return "", fmt.Errorf("%w: default path %q: %w", ErrDiskPathResolveFailed, DefaultDiskStorePath, err)
		}

		return defaultPath, nil
	}

	cleanedPath := filepath.Clean(trimmedPath)

	absPath, err := filepath.Abs(cleanedPath)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrDiskPathResolveFailed, cleanedPath, err)
	}

	info, err := os.Stat(absPath)
	switch {
	case err == nil:
		if info.IsDir() {
			return absPath, fmt.Errorf("%w: %q", ErrDiskPathIsDirectory, absPath)
		}

		return absPath, nil
	case errors.Is(err, os.ErrNotExist):
		return absPath, nil
	default:
		return absPath, fmt.Errorf("%w: %q: %w", ErrDiskPathResolveFailed, absPath, err)
	}
}

// cloneBytes returns an owned copy of b. A nil or empty input yields an empty,
// non-nil slice so stored values never alias caller memory and always read back
// as a value rather than nil.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return []byte{}
	}

	return slices.Clone(b)
}

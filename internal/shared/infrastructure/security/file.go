// Package security guards reads of user-supplied files.
package security

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileBytes caps task batch files.
const DefaultMaxFileBytes int64 = 4 << 20

// ValidateFilePath cleans path, makes it absolute and resolves symlinks.
// Paths with control characters are rejected.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return "", fmt.Errorf("file path contains a control character: %q", path)
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ReadFile reads a regular file of at most maxBytes after validating its
// path. maxBytes <= 0 selects DefaultMaxFileBytes.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is validated above
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, the limit is %d", path, info.Size(), maxBytes)
	}

	return io.ReadAll(io.LimitReader(f, maxBytes))
}

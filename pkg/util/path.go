package util

import (
	"path/filepath"
	"strings"
)

// SafeFilePath cleans a relative path and reports whether it stays inside the
// current directory. Absolute paths, empty paths and paths that still climb
// out with ".." after cleaning are rejected.
func SafeFilePath(p string) (string, bool) {
	cleaned, ok := SafeFilePathAllowAbsolute(p)
	if !ok || filepath.IsAbs(cleaned) {
		return "", false
	}
	return cleaned, true
}

// SafeFilePathAllowAbsolute is like SafeFilePath but accepts absolute paths.
func SafeFilePathAllowAbsolute(p string) (string, bool) {
	if p == "" {
		return "", false
	}
	cleaned := filepath.Clean(p)
	// Backslashes are treated as separators so Windows-style traversal is caught on every OS.
	for _, seg := range strings.Split(strings.ReplaceAll(cleaned, `\`, "/"), "/") {
		if seg == ".." {
			return "", false
		}
	}
	return cleaned, true
}

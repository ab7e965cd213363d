package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// textExtensions lists extensions treated as plain text input.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
	".json":     true,
}

// ValidateInputFile checks that filename names an existing, readable regular
// file.
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

// IsTextFile reports whether the file extension suggests text content.
func IsTextFile(filename string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(filename))]
}

// FormatFileSize renders a byte count in a human-readable unit.
func FormatFileSize(size int64) string {
	const unit = int64(1024)
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	value, suffix := float64(size)/float64(unit), "K"
	for _, next := range []string{"M", "G", "T", "P", "E"} {
		if value < float64(unit) {
			break
		}
		value /= float64(unit)
		suffix = next
	}
	return fmt.Sprintf("%.1f %sB", value, suffix)
}

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFileNameLen = 200

// SafeFileName reduces a server- or user-supplied name to a single path
// element that is safe to create inside the output directory. Control
// characters are dropped and characters outside a filename-safe set become
// '_'. The result is never empty and never starts with a dot.
func SafeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	n := 0
	for _, r := range base {
		if n == maxFileNameLen {
			break
		}
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(" -_.,()", r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		n++
	}

	cleaned := strings.TrimRight(strings.TrimLeft(b.String(), ". "), " ")
	if cleaned == "" {
		return "export"
	}
	return cleaned
}

// ValidateOutputDir requires an existing, clean directory path without
// traversal elements.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output directory is required")
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("output directory cannot contain path traversal")
		}
	}

	if filepath.Clean(dir) != dir {
		return fmt.Errorf("output directory must be a clean path")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist")
		}
		return fmt.Errorf("invalid output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory is not a directory")
	}

	return nil
}

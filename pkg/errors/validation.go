package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxPathLength bounds user-supplied file paths.
const maxPathLength = 4096

// ValidateFilePath validates a user-selected file path for import or export.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateFilePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateExportName validates the file name used for exports.
// It must be a plain base name ending in .json.
func ValidateExportName(name string) error {
	if err := ValidateFilePath(name); err != nil {
		return err
	}
	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidPath, "export name cannot contain path separators")
	}
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return New(ErrCodeInvalidPath, "export name must end in .json")
	}
	return nil
}

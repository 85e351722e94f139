package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxLabelLength bounds node and edge labels accepted from the API.
const maxLabelLength = 512

// ValidateLabel validates a node or edge label for safety.
// Empty labels are allowed; the editor may relabel a node to "".
//
// Validation rules:
//   - Maximum length of 512 bytes
//   - No control characters other than newline and tab
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateKey validates a durable store key.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 256 characters
//   - No whitespace or control characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "store key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "store key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "store key contains invalid characters")
		}
	}
	return nil
}

// validExportExts are the file extensions the exporter can produce.
var validExportExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".hcl":  true,
	".svg":  true,
	".png":  true,
}

// ValidateExportPath validates an export destination path.
// It ensures the file has a known export extension and does not contain
// null bytes or control characters.
func ValidateExportPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !validExportExts[ext] {
		return New(ErrCodeInvalidFormat, "unsupported export extension %q", ext)
	}
	return nil
}

package errors

import (
	"strings"
	"unicode"
)

// maxFileNameLength mirrors the common filesystem limit for one path element.
const maxFileNameLength = 255

// ValidateFileName checks that name is a plain base name that can be joined
// onto a manuscript directory without escaping it.
//
// Validation rules:
//   - Name cannot be empty, "." or ".."
//   - Maximum length of 255 bytes
//   - No path separators (/ or \)
//   - No null bytes or control characters
func ValidateFileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, name, "file name cannot be empty")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidName, name, "file name cannot be a directory reference")
	}
	if len(name) > maxFileNameLength {
		return New(ErrCodeInvalidName, name, "file name too long (max %d bytes)", maxFileNameLength)
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidName, name, "file name cannot contain path separators")
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidName, name, "file name contains invalid control characters")
		}
	}
	return nil
}

// ValidateMetadataKey checks that key can be stored in a key:value metadata
// line. Keys are never escaped, so the separator and line breaks are rejected.
func ValidateMetadataKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidMetadata, key, "metadata key cannot be empty")
	}
	if strings.ContainsAny(key, ":\r\n") {
		return New(ErrCodeInvalidMetadata, key, "metadata key cannot contain ':' or line breaks")
	}
	return nil
}

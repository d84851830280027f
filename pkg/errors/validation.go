package errors

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidateMarker validates a header marker used to recognise outline
// headers. It must be exactly one printable, non-space rune.
//
// A marker of '#' or '-' is allowed; letters and digits are rejected
// because ordinary prose would be mistaken for headers.
func ValidateMarker(marker string) error {
	if marker == "" {
		return New(ErrCodeInvalidInput, "header marker cannot be empty")
	}
	if utf8.RuneCountInString(marker) != 1 {
		return New(ErrCodeInvalidInput, "header marker must be a single character, got %q", marker)
	}
	r, _ := utf8.DecodeRuneInString(marker)
	if r == utf8.RuneError || unicode.IsSpace(r) || unicode.IsControl(r) {
		return New(ErrCodeInvalidInput, "header marker %q is not printable", marker)
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return New(ErrCodeInvalidInput, "header marker %q must not be a letter or digit", marker)
	}
	return nil
}

// ValidateExtent validates a layout width or height.
// Zero is accepted and means "use the default".
func ValidateExtent(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodePrecondition, "%s must be finite, got %v", name, v)
	}
	if v < 0 {
		return New(ErrCodePrecondition, "%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidateDocumentName validates a document name used to derive output
// filenames and cache keys. It must be a simple basename.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators
//   - No "." or ".." entries
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "document name cannot be empty")
	}

	const maxNameLength = 255
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "document name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "document name cannot contain path separators")
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "document name %q is reserved", name)
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateCacheURL validates a cache backend URL.
// Only redis:// and rediss:// schemes are understood.
func ValidateCacheURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "cache URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "cache URL must use redis or rediss scheme")
	}
	return nil
}

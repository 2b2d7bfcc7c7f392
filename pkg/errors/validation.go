package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// identifierRe matches skin identifiers: lowercase letters, digits and underscores.
var identifierRe = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateIdentifier checks that a skin identifier is non-empty and uses only
// lowercase letters, numbers, and underscores.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidIdentifier, "identifier cannot be empty")
	}
	if !identifierRe.MatchString(id) {
		return New(ErrCodeInvalidIdentifier, "identifier may only contain lowercase letters, numbers, and underscores: %q", id)
	}
	return nil
}

// ValidateEntryPath validates a path read from an archive or directory listing.
// It rejects paths that could escape the extraction root.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - No absolute paths or parent directory segments
func ValidateEntryPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "entry path cannot be empty")
	}

	if len(path) > 1024 {
		return New(ErrCodeInvalidPath, "entry path too long (max 1024 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "entry path contains invalid control characters")
		}
	}

	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "entry path must be relative and slash-separated: %q", path)
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "entry path cannot contain parent directory references: %q", path)
		}
	}

	return nil
}

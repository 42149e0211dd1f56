package utils

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._\s-]`)

// SanitizeFilename cleans a filename for safe transmission by removing
// dangerous characters and limiting length. It trims spaces and dots,
// removes parent directory references, and filters out non-alphanumeric
// characters except for safe punctuation.
func SanitizeFilename(filename string) string {
	sanitized := strings.Trim(filename, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		sanitized = sanitized[:255]
	}
	return sanitized
}

package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs.
	MaxPathLength = 500
	// MaxUserIDLength matches the request validation cap on userId.
	MaxUserIDLength = 128
)

// SanitizePath strips control characters and truncates a URL path so a
// crafted request cannot inject log lines.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}
	path = filterRunes(path)
	if len(path) > MaxPathLength {
		path = path[:MaxPathLength] + "..."
	}
	return path
}

// SanitizeUserID cleans a caller-chosen user identifier for logging.
func SanitizeUserID(userID string) string {
	userID = filterRunes(userID)
	if len(userID) > MaxUserIDLength {
		userID = userID[:MaxUserIDLength] + "..."
	}
	return userID
}

// filterRunes validates UTF-8 and keeps printable characters plus common
// whitespace.
func filterRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

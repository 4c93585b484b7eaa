package ai

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
)

// SanitizePrompt produces a log-safe preview of prompt or response content:
// valid UTF-8, control characters stripped, truncated to MaxPreviewLength.
func SanitizePrompt(content string) string {
	if content == "" {
		return ""
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	var builder strings.Builder
	builder.Grow(len(content))
	for _, r := range content {
		if unicode.IsPrint(r) || r == ' ' {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	content = builder.String()

	if len(content) > MaxPreviewLength {
		content = content[:MaxPreviewLength] + "..."
	}
	return content
}

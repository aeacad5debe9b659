// Package validation holds the length checks and sanitizers applied to user
// input before it reaches storage. Lengths are counted in characters (runes),
// not bytes.
package validation

import (
	"strings"
	"unicode/utf8"

	"taskAssistant/internal/constants"
)

func IsValidTaskTitle(title string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	return n > 0 && n <= constants.MaxTaskTitleLength
}

func IsValidTaskDescription(description string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(description)) <= constants.MaxTaskDescriptionLength
}

// IsValidThreadTitle accepts the empty string: thread titles are optional.
func IsValidThreadTitle(title string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(title)) <= constants.MaxThreadTitleLength
}

func IsValidMessageContent(content string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	return n > 0 && n <= constants.MaxMessageContentLength
}

func SanitizeTaskTitle(title string) string {
	return sanitize(title, constants.MaxTaskTitleLength)
}

func SanitizeTaskDescription(description string) string {
	return sanitize(description, constants.MaxTaskDescriptionLength)
}

func SanitizeThreadTitle(title string) string {
	return sanitize(title, constants.MaxThreadTitleLength)
}

func SanitizeMessageContent(content string) string {
	return sanitize(content, constants.MaxMessageContentLength)
}

// sanitize trims surrounding whitespace and cuts the result to at most max runes.
func sanitize(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

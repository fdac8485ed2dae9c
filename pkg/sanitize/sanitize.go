// Package sanitize normalizes member-supplied text before it is persisted.
// Every helper returns nil when nothing meaningful is left.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	horizontalSpace   = regexp.MustCompile(`[^\S\n]+`)
	extraNewlines     = regexp.MustCompile(`\n{3,}`)
	handlePattern     = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
)

// StripHTML removes anything that looks like a markup tag.
func StripHTML(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// Text strips tags and collapses all whitespace to single spaces.
func Text(raw string) *string {
	cleaned := whitespacePattern.ReplaceAllString(strings.TrimSpace(StripHTML(raw)), " ")
	return nonEmpty(cleaned)
}

// Multiline keeps line breaks (at most one blank line) but collapses runs of
// spaces and tabs.
func Multiline(raw string) *string {
	cleaned := strings.ReplaceAll(StripHTML(raw), "\r\n", "\n")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = horizontalSpace.ReplaceAllString(cleaned, " ")
	cleaned = extraNewlines.ReplaceAllString(cleaned, "\n\n")
	return nonEmpty(cleaned)
}

// URL accepts http and https links. Inputs without a scheme are retried with
// https:// prepended.
func URL(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if parsed, ok := parseWebURL(trimmed); ok {
		return &parsed
	}
	if strings.Contains(trimmed, "://") {
		return nil
	}
	if parsed, ok := parseWebURL("https://" + trimmed); ok {
		return &parsed
	}
	return nil
}

// AbsoluteURL accepts only complete http or https links, without guessing a
// scheme.
func AbsoluteURL(raw string) *string {
	parsed, ok := parseWebURL(strings.TrimSpace(raw))
	if !ok {
		return nil
	}
	return &parsed
}

// Handle lowercases and trims a handle. It does not validate the result.
func Handle(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidHandle reports whether handle is 3-30 lowercase letters, digits or underscores.
func ValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

func parseWebURL(candidate string) (string, bool) {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, " <>") {
		return "", false
	}
	return parsed.String(), true
}

func nonEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

package core

import (
	"regexp"
	"strings"
)

var (
	secretKeyPattern  = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`)
	bearerPattern     = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]{8,}`)
	basicAuthPattern  = regexp.MustCompile(`(?i)\bBasic\s+[A-Za-z0-9+/=]{8,}`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// RedactSecrets removes credential material from text destined for error
// strings or logs: provider API keys, bearer tokens and basic-auth blobs.
func RedactSecrets(s string) string {
	s = secretKeyPattern.ReplaceAllString(s, "sk-[REDACTED]")
	s = bearerPattern.ReplaceAllString(s, "Bearer [REDACTED]")
	s = basicAuthPattern.ReplaceAllString(s, "Basic [REDACTED]")
	return s
}

// Snippet collapses whitespace and truncates s to at most max runes, for
// carrying response excerpts in error messages.
func Snippet(s string, max int) string {
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

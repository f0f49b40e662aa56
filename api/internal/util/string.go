package util

import (
	"strings"
	"unicode/utf8"
)

var fenceLangs = map[string]bool{"": true, "text": true, "plaintext": true, "json": true}

// StripCodeFences removes a surrounding ``` block that LLM engines like to add.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// only known info strings are dropped; anything else on that line is text
	if i := strings.IndexByte(s, '\n'); i >= 0 && fenceLangs[strings.ToLower(strings.TrimSpace(s[:i]))] {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// TruncateBytes cuts s to at most max bytes without splitting a rune and
// appends "…" when something was cut.
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

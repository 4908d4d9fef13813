package sources

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CleanText collapses whitespace, replaces non-breaking spaces and normalizes
// the string to NFC so visually equal text compares equal.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// InferRemote reports whether the text mentions remote work.
func InferRemote(text string) bool {
	return strings.Contains(strings.ToLower(text), "remote")
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CompactTags cleans tags, dropping empty ones and keeping their order.
func CompactTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = CleanText(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

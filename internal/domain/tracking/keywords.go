package tracking

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKeywords trims and NFC-normalizes each keyword, then drops empty
// entries and later duplicates. Order of first occurrence is kept.
func NormalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = norm.NFC.String(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ParseKeywordText splits free text with one keyword per line
func ParseKeywordText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return NormalizeKeywords(strings.Split(text, "\n"))
}

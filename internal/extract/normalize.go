package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanText composes the text to NFC and collapses every whitespace run, line breaks
// included, to one space.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

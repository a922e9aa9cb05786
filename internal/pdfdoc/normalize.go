package pdfdoc

import (
	"regexp"
	"strings"
)

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reTabs     = regexp.MustCompile(`\t+`)
	reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
)

// Normalize cleans pdftotext output while keeping column alignment: tabs become a cell
// break, form feeds and ruling-only lines are dropped, trailing spaces are trimmed.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reTabs.ReplaceAllString(s, "  ")
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

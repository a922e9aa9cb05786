package constants

import "strings"

// Source formats recognized by discovery.
const (
	DOCX = "DOCX"
	PDF  = "PDF"
)

// AllowedExtensions holds the file extensions picked up by directory discovery.
var AllowedExtensions = map[string]struct{}{
	"docx": {},
	"pdf":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns DOCX or PDF for a supported extension, "" otherwise.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "docx":
		return DOCX
	case "pdf":
		return PDF
	default:
		return ""
	}
}

package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/eventforms/constants"
)

// AllowedExt checks if a file extension is in the allowed set (docx, pdf).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// IsLockFile reports Word owner files such as "~$report.docx".
func IsLockFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

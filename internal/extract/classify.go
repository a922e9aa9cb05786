package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/docx"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
)

// a bracketed first clause such as "|1|" or "| 1 |"
var reOldFormStart = regexp.MustCompile(`^\|\s*1\s*\|`)

const newTemplateMinTables = 3

// ClassifyDocx tells the current template (three tables, event-name label in the first
// cell) from the legacy one.
func ClassifyDocx(doc *docx.Document) constants.Layout {
	if doc == nil || len(doc.Tables) < newTemplateMinTables {
		return constants.LayoutOld
	}
	first, ok := doc.Cell(0, 0, 0)
	if ok && strings.Contains(first, keywords.NewTemplateMarker) {
		return constants.LayoutNew
	}
	return constants.LayoutOld
}

// ClassifyPDF picks the PDF layout in priority order: no pages, numbered clause form,
// registration table, free text.
func ClassifyPDF(doc *pdfdoc.Document, m *keywords.Mapping) constants.Layout {
	if doc == nil || doc.Pages == 0 {
		return constants.LayoutEmptyPDF
	}
	if IsOldForm(doc.Text()) {
		return constants.LayoutOldPDFFormat
	}
	for _, t := range doc.Tables() {
		if m.HasTableHeader(t.Header()) {
			return constants.LayoutPDFTable
		}
	}
	return constants.LayoutPDFText
}

// IsOldForm reports whether any line opens with the bracketed first clause.
func IsOldForm(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if reOldFormStart.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

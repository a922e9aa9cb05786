package constants

// Layout is the template variant detected for a source document.
type Layout string

// Stable values (written to the summary table and the ledger).
const (
	LayoutNew          Layout = "new"            // docx, three 7-row tables
	LayoutOld          Layout = "old"            // docx, legacy single table
	LayoutOldPDFFormat Layout = "old_pdf_format" // pdf, pipe-delimited numbered clauses
	LayoutPDFTable     Layout = "pdf_table"      // pdf, label/value table
	LayoutPDFText      Layout = "pdf_text"       // pdf, free text fallback
	LayoutEmptyPDF     Layout = "empty_pdf"      // pdf without pages
	LayoutError        Layout = "error"          // file could not be read
)

var allLayouts = []Layout{
	LayoutNew,
	LayoutOld,
	LayoutOldPDFFormat,
	LayoutPDFTable,
	LayoutPDFText,
	LayoutEmptyPDF,
	LayoutError,
}

// Layouts returns every layout tag.
func Layouts() []Layout {
	out := make([]Layout, len(allLayouts))
	copy(out, allLayouts)
	return out
}

// Valid reports whether l is a known layout tag.
func (l Layout) Valid() bool {
	for _, v := range allLayouts {
		if v == l {
			return true
		}
	}
	return false
}

func (l Layout) String() string { return string(l) }

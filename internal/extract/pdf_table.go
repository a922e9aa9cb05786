package extract

import (
	"strings"

	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
)

// column positions of the registration table: two label columns, a spacer, the value
const (
	labelCol1 = 0
	labelCol2 = 1
	valueCol  = 3
)

// ExtractTables maps label/value rows onto fields. Each row fills at most one field, the
// first unfilled one in canonical order whose keyword occurs in a label. Filled fields
// are never overwritten, so earlier rows and tables take precedence.
func ExtractTables(tables []pdfdoc.Table, m *keywords.Mapping) entity.Fields {
	fields := entity.NewFields()
	entries := m.Entries()
	for _, t := range tables {
		for _, row := range t.Rows {
			labels, value := splitRow(row)
			value = CleanText(value)
			if value == "" || len(labels) == 0 {
				continue
			}
			for _, e := range entries {
				if fields.Filled(e.Field) {
					continue
				}
				if containsAny(labels, e.Keywords) {
					fields.Set(e.Field, value)
					break
				}
			}
		}
	}
	return fields
}

// splitRow returns the label cells and the value of a table row. Rows as wide as the
// printed form use fixed columns; narrower reconstructed rows take the last non-empty
// cell as the value and up to two non-empty cells before it as labels.
func splitRow(row []string) ([]string, string) {
	if len(row) > valueCol {
		return []string{CleanText(row[labelCol1]), CleanText(row[labelCol2])}, row[valueCol]
	}
	var cells []string
	for _, c := range row {
		if c = CleanText(c); c != "" {
			cells = append(cells, c)
		}
	}
	if len(cells) < 2 {
		return nil, ""
	}
	value := cells[len(cells)-1]
	labels := cells[:len(cells)-1]
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return labels, value
}

func containsAny(labels, kws []string) bool {
	for _, kw := range kws {
		for _, l := range labels {
			if l != "" && strings.Contains(l, kw) {
				return true
			}
		}
	}
	return false
}

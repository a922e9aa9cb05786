package extract

import (
	"strings"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
)

// ScanText reads free text line by line. A line starting with a keyword, or containing
// "keyword:", switches the current field and its remainder becomes the field value; any
// other line is appended to the current field.
func ScanText(text string, m *keywords.Mapping) entity.Fields {
	fields := entity.NewFields()
	var current constants.Field
	entries := m.Entries()

	for _, raw := range strings.Split(text, "\n") {
		line := CleanText(raw)
		if line == "" {
			continue
		}
		if f, rest, ok := matchLine(line, m, entries); ok {
			current = f
			fields.Set(f, strings.TrimLeft(rest, ":- "))
			continue
		}
		if current != "" {
			fields.Set(current, joinNonEmpty(" ", fields.Get(current), line))
		}
	}
	return fields
}

func matchLine(line string, m *keywords.Mapping, entries []keywords.Entry) (constants.Field, string, bool) {
	if f, kw, ok := m.MatchPrefix(line); ok {
		return f, line[len(kw):], true
	}
	for _, e := range entries {
		for _, kw := range e.Keywords {
			if i := strings.Index(line, kw+":"); i >= 0 {
				return e.Field, line[i+len(kw)+1:], true
			}
		}
	}
	return "", "", false
}

// Package keywords holds the label variants used to locate canonical fields in source
// documents. A Mapping is built once at startup and never mutated afterwards.
package keywords

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/eventforms/constants"
)

// Mapping associates each canonical field with its keyword variants.
type Mapping struct {
	fields       map[constants.Field][]string
	tableHeaders []string
}

// Entry is one field with its variants, in canonical order.
type Entry struct {
	Field    constants.Field
	Keywords []string
}

// Default returns the built-in mapping.
func Default() *Mapping {
	m := &Mapping{
		fields:       make(map[constants.Field][]string, len(defaultFields)),
		tableHeaders: append([]string(nil), defaultTableHeaders...),
	}
	for f, kws := range defaultFields {
		m.fields[f] = append([]string(nil), kws...)
	}
	return m
}

// Keywords returns a copy of the variants configured for f.
func (m *Mapping) Keywords(f constants.Field) []string {
	return append([]string(nil), m.fields[f]...)
}

// Entries returns every canonical field with its variants in canonical order.
// Fields without variants are included with an empty slice.
func (m *Mapping) Entries() []Entry {
	fields := constants.CanonicalFields()
	out := make([]Entry, 0, len(fields))
	for _, f := range fields {
		out = append(out, Entry{Field: f, Keywords: m.Keywords(f)})
	}
	return out
}

// TableHeaders returns the header markers of a registration table.
func (m *Mapping) TableHeaders() []string {
	return append([]string(nil), m.tableHeaders...)
}

// MatchPrefix returns the first field (canonical order) having a variant that line starts
// with, and the variant that matched.
func (m *Mapping) MatchPrefix(line string) (constants.Field, string, bool) {
	for _, f := range constants.CanonicalFields() {
		for _, kw := range m.fields[f] {
			if strings.HasPrefix(line, kw) {
				return f, kw, true
			}
		}
	}
	return "", "", false
}

// HasTableHeader reports whether any cell contains a configured header marker.
func (m *Mapping) HasTableHeader(cells []string) bool {
	for _, c := range cells {
		for _, h := range m.tableHeaders {
			if strings.Contains(c, h) {
				return true
			}
		}
	}
	return false
}

// fileFormat is the YAML layout of a keywords override file.
type fileFormat struct {
	Fields       map[string][]string `yaml:"fields"`
	TableHeaders []string            `yaml:"table_headers"`
}

// LoadFile reads a YAML override on top of the defaults. Fields the file does not name
// keep their default variants.
func LoadFile(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML override on top of the defaults.
func Parse(data []byte) (*Mapping, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}

	m := Default()
	var errs []error
	for name, kws := range ff.Fields {
		f, ok := constants.Canonicalize(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown field %q", name))
			continue
		}
		cleaned := cleanList(kws)
		if len(cleaned) == 0 {
			errs = append(errs, fmt.Errorf("field %q has no keywords", name))
			continue
		}
		m.fields[f] = cleaned
	}
	if ff.TableHeaders != nil {
		headers := cleanList(ff.TableHeaders)
		if len(headers) == 0 {
			errs = append(errs, errors.New("table_headers is empty"))
		} else {
			m.tableHeaders = headers
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid keywords: %w", errors.Join(errs...))
	}
	return m, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

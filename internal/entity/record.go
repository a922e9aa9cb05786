package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/eventforms/constants"
)

// Fields maps every canonical field to its extracted text. The zero value is not usable;
// build one with NewFields so all keys are present.
type Fields struct {
	values map[constants.Field]string
}

// NewFields returns a field set with every canonical field set to "".
func NewFields() Fields {
	values := make(map[constants.Field]string, len(constants.CanonicalFields()))
	for _, f := range constants.CanonicalFields() {
		values[f] = ""
	}
	return Fields{values: values}
}

// Get returns the value of f ("" for unknown fields).
func (fs Fields) Get(f constants.Field) string {
	return fs.values[f]
}

// Set assigns a canonical field. Unknown fields are rejected so the key set never grows.
func (fs Fields) Set(f constants.Field, value string) bool {
	if _, ok := fs.values[f]; !ok {
		return false
	}
	fs.values[f] = value
	return true
}

// Filled reports whether f holds a non-empty value.
func (fs Fields) Filled(f constants.Field) bool {
	return fs.values[f] != ""
}

// Map returns a copy keyed by canonical field name.
func (fs Fields) Map() map[string]string {
	out := make(map[string]string, len(fs.values))
	for k, v := range fs.values {
		out[string(k)] = v
	}
	return out
}

// Values returns the values in canonical order.
func (fs Fields) Values() []string {
	fields := constants.CanonicalFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fs.values[f]
	}
	return out
}

// Empty reports whether no field holds a value.
func (fs Fields) Empty() bool {
	for _, v := range fs.values {
		if v != "" {
			return false
		}
	}
	return true
}

// MarshalJSON writes the fields as an object in canonical order without escaping
// non-ASCII or HTML characters.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range constants.CanonicalFields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(string(f))
		if err != nil {
			return nil, err
		}
		v, err := marshalString(fs.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object keyed by canonical field names.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewFields()
	for k, v := range raw {
		f, ok := constants.Canonicalize(k)
		if !ok {
			return fmt.Errorf("unknown field %q", k)
		}
		out.values[f] = v
	}
	*fs = out
	return nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Record is the extraction result for one source file.
type Record struct {
	Layout constants.Layout `json:"layout"`
	Fields Fields           `json:"fields"`
}

// NewRecord returns an all-empty record tagged with layout.
func NewRecord(layout constants.Layout) Record {
	return Record{Layout: layout, Fields: NewFields()}
}

// ProcessingStatus is one row of the summary table.
type ProcessingStatus struct {
	Filename   string           `json:"filename"`
	SourcePath string           `json:"source_path"`
	Status     string           `json:"status"`
	Layout     constants.Layout `json:"layout"`
}

// Failed reports whether the file produced no record.
func (s ProcessingStatus) Failed() bool {
	return constants.IsErrorStatus(s.Status)
}

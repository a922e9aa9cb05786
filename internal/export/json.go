package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/eventforms/internal/pipeline"
)

const jsonIndent = "    "

// MarshalRecords renders records as one object keyed by file name, in the given order,
// indented with four spaces. Non-ASCII text is written literally.
func MarshalRecords(records []pipeline.NamedRecord) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, r := range records {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := marshalString(r.Name)
		if err != nil {
			return nil, err
		}
		fields, err := r.Record.Fields.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", r.Name, err)
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(fields)
	}
	compact.WriteByte('}')

	if len(records) == 0 {
		return compact.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", jsonIndent); err != nil {
		return nil, fmt.Errorf("indent: %w", err)
	}
	return out.Bytes(), nil
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

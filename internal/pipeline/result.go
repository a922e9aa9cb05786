package pipeline

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/ingest"
)

// NamedRecord is a record keyed by the basename of its source file.
type NamedRecord struct {
	Name   string
	Path   string
	Record entity.Record
}

// Result collects the outcome of one batch run.
type Result struct {
	RunID     uuid.UUID
	Records   []NamedRecord // successful extractions, first-seen basename order
	Statuses  []entity.ProcessingStatus
	Stats     ingest.DirStats
	Processed int
	Failed    int
}

// put stores rec under name. A later record with the same name replaces the earlier one
// and keeps its position; put reports whether that happened.
func (r *Result) put(nr NamedRecord) bool {
	for i := range r.Records {
		if r.Records[i].Name == nr.Name {
			r.Records[i] = nr
			return true
		}
	}
	r.Records = append(r.Records, nr)
	return false
}

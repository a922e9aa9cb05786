package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run is one batch execution recorded in the ledger.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	InputDir   string     `json:"input_dir"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
}

// Document is one processed file recorded in the ledger.
type Document struct {
	ID          int64           `json:"id"`
	RunID       uuid.UUID       `json:"run_id"`
	Filename    string          `json:"filename"`
	SourcePath  string          `json:"source_path"`
	ContentHash string          `json:"content_hash"`
	Layout      string          `json:"layout"`
	Status      string          `json:"status"`
	Fields      json.RawMessage `json:"fields,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

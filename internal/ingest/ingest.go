package ingest

import "context"

// SourceFile is one discovered input document.
type SourceFile struct {
	Path    string
	Name    string // base name, the key of the JSON output
	Format  string // constants.DOCX | constants.PDF
	Size    int64
	HashHex string // SHA-256 of the content
	Kind    string // sniffed MIME type; "" when the content is not recognized
	Err     error  // set when the file could not be read during discovery
}

// Failed reports whether discovery could not read the file.
func (f SourceFile) Failed() bool { return f.Err != nil }

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Docx    uint32
	PDF     uint32
	Failed  uint32
}

// Ingestor is the behavior the pipeline depends on.
type Ingestor interface {
	// IngestPath inspects a single file.
	IngestPath(ctx context.Context, path string) (SourceFile, error)
	// IngestDirectory discovers all supported files under root in lexical order.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]SourceFile, DirStats, error)
}

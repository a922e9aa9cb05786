package extract

import (
	"context"

	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
)

// Extractor turns one source file into a record. Structural problems inside a readable
// file are absorbed into empty fields; the error return is reserved for files that
// cannot be read at all.
type Extractor interface {
	Extract(ctx context.Context, path string) (entity.Record, error)
}

// PDFSource opens the first page of a PDF. *pdfdoc.Reader implements it.
type PDFSource interface {
	Open(ctx context.Context, path string) (*pdfdoc.Document, error)
}

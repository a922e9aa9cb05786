package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
)

type PDFExtractor struct {
	source  PDFSource
	mapping *keywords.Mapping
	logger  *slog.Logger
}

func NewPDFExtractor(source PDFSource, mapping *keywords.Mapping, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if mapping == nil {
		mapping = keywords.Default()
	}
	return &PDFExtractor{source: source, mapping: mapping, logger: logger}
}

// Extract reads the first page of the PDF at path and runs the routine of its layout.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (entity.Record, error) {
	if err := ctx.Err(); err != nil {
		return entity.NewRecord(constants.LayoutError), err
	}
	doc, err := e.source.Open(ctx, path)
	if errors.Is(err, common.ErrEmptyDocument) {
		e.logger.Debug("extract.pdf.empty", "path", path)
		return entity.NewRecord(constants.LayoutEmptyPDF), nil
	}
	if err != nil {
		return entity.NewRecord(constants.LayoutError), err
	}
	rec := ExtractPDF(doc, e.mapping)
	e.logger.Debug("extract.pdf.done", "path", path, "layout", rec.Layout, "pages", doc.Pages)
	return rec, nil
}

// ExtractPDF classifies doc and applies the matching routine. A document without pages
// yields an all-empty record.
func ExtractPDF(doc *pdfdoc.Document, m *keywords.Mapping) entity.Record {
	layout := ClassifyPDF(doc, m)
	rec := entity.NewRecord(layout)
	switch layout {
	case constants.LayoutOldPDFFormat:
		rec.Fields = ParseOldForm(doc.Text())
	case constants.LayoutPDFTable:
		rec.Fields = ExtractTables(doc.Tables(), m)
	case constants.LayoutPDFText:
		rec.Fields = ScanText(doc.Text(), m)
	}
	return rec
}

package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/docx"
	"github.com/joseph-ayodele/eventforms/internal/entity"
)

type DocxExtractor struct {
	logger *slog.Logger
}

func NewDocxExtractor(logger *slog.Logger) *DocxExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocxExtractor{logger: logger}
}

// Extract reads the document at path and applies the positional schedule of its template.
func (e *DocxExtractor) Extract(ctx context.Context, path string) (entity.Record, error) {
	if err := ctx.Err(); err != nil {
		return entity.NewRecord(constants.LayoutError), err
	}
	doc, err := docx.Open(path)
	if err != nil {
		return entity.NewRecord(constants.LayoutError), err
	}
	return ExtractDocx(doc, e.logger.With("path", path)), nil
}

// ExtractDocx classifies doc and reads its fields. Cells missing from the document leave
// their field empty.
func ExtractDocx(doc *docx.Document, logger *slog.Logger) entity.Record {
	if logger == nil {
		logger = slog.Default()
	}
	layout := ClassifyDocx(doc)
	rec := entity.NewRecord(layout)
	s := scheduleFor(layout)

	for _, ref := range s.Cells {
		table, row := s.locate(ref.Row)
		if s.MaxTables > 0 && table >= s.MaxTables {
			logMismatch(logger, ref.Field, common.Mismatch("table %d beyond template limit %d", table, s.MaxTables))
			continue
		}
		v, ok := doc.Cell(table, row, s.Column)
		if !ok {
			logMismatch(logger, ref.Field, common.Mismatch("no cell at table %d row %d col %d", table, row, s.Column))
			continue
		}
		if rec.Fields.Filled(ref.Field) {
			continue
		}
		rec.Fields.Set(ref.Field, CleanText(v))
	}

	// legacy template: equipment is two cells joined as-is, empty values included
	if layout == constants.LayoutOld {
		parts := make([]string, 0, len(oldEquipmentCells))
		for _, c := range oldEquipmentCells {
			v, ok := doc.Cell(c[0], c[1], c[2])
			if !ok {
				logMismatch(logger, constants.TechnicalEquipment, common.Mismatch("no cell at table %d row %d col %d", c[0], c[1], c[2]))
				continue
			}
			parts = append(parts, CleanText(v))
		}
		rec.Fields.Set(constants.TechnicalEquipment, strings.Join(parts, ", "))
	}

	tables := 0
	if doc != nil {
		tables = len(doc.Tables)
	}
	logger.Debug("extract.docx.done", "layout", layout, "tables", tables)
	return rec
}

func logMismatch(logger *slog.Logger, f constants.Field, err error) {
	logger.Debug("extract.docx.mismatch", "field", string(f), "error", err)
}

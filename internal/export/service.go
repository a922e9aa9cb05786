package export

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/pipeline"
)

const (
	SummarySheet = "Summary"
	RecordsSheet = "Records"
)

var summaryHeaders = []string{"Filename", "Status", "Document Type"}

func recordHeaders() []string {
	return append([]string{"Filename", "Document Type"}, constants.AsStringSlice()...)
}

// Service writes the batch outputs: a JSON file of records and an XLSX workbook.
type Service struct {
	schema *RecordSchema
	logger *slog.Logger
}

func NewService(logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := NewRecordSchema()
	if err != nil {
		return nil, err
	}
	return &Service{schema: schema, logger: logger}, nil
}

// Reset removes previous outputs and writes empty ones, so a run that dies midway never
// leaves stale results behind.
func (s *Service) Reset(xlsxPath, jsonPath string) error {
	for _, p := range []string{xlsxPath, jsonPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	if err := s.WriteJSON(jsonPath, nil); err != nil {
		return err
	}
	return s.WriteXLSX(xlsxPath, nil, nil)
}

// Write validates the records and stores both outputs.
func (s *Service) Write(xlsxPath, jsonPath string, res *pipeline.Result) error {
	for _, r := range res.Records {
		if err := s.schema.Validate(r.Record.Fields); err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
	}
	if err := s.WriteJSON(jsonPath, res.Records); err != nil {
		return err
	}
	return s.WriteXLSX(xlsxPath, res.Statuses, res.Records)
}

// WriteJSON stores the records object at path.
func (s *Service) WriteJSON(path string, records []pipeline.NamedRecord) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	s.logger.Debug("export.json.ok", "path", path, "records", len(records))
	return nil
}

// WriteXLSX stores the summary and records sheets at path.
func (s *Service) WriteXLSX(path string, statuses []entity.ProcessingStatus, records []pipeline.NamedRecord) error {
	start := time.Now()
	data, err := BuildWorkbook(statuses, records)
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"path", path,
		"rows", len(statuses),
		"records", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// BuildWorkbook returns the XLSX bytes: a Summary sheet with one row per status and a
// Records sheet with one row per record.
func BuildWorkbook(statuses []entity.ProcessingStatus, records []pipeline.NamedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the summary
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(RecordsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SummarySheet)
	f.SetActiveSheet(activeIndex)

	if err := writeRow(f, SummarySheet, 1, toAny(summaryHeaders)); err != nil {
		return nil, err
	}
	for i, st := range statuses {
		if err := writeRow(f, SummarySheet, i+2, []any{st.Filename, st.Status, string(st.Layout)}); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, RecordsSheet, 1, toAny(recordHeaders())); err != nil {
		return nil, err
	}
	for i, r := range records {
		row := []any{r.Name, string(r.Record.Layout)}
		row = append(row, toAny(r.Record.Fields.Values())...)
		if err := writeRow(f, RecordsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 40) // filename
	_ = f.SetColWidth(SummarySheet, "B", "B", 48) // status
	_ = f.SetColWidth(SummarySheet, "C", "C", 16) // layout
	_ = f.SetColWidth(RecordsSheet, "A", "A", 40)
	_ = f.SetColWidth(RecordsSheet, "C", "O", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx build: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

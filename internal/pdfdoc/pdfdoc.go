// Package pdfdoc reads the first page of a PDF as positioned text lines and reconstructs
// the tables drawn on it.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/eventforms/internal/common"
)

const (
	BackendNative    = "native"
	BackendPdftotext = "pdftotext"
)

type Config struct {
	Backend   string        // BackendNative (default) or BackendPdftotext
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	Timeout   time.Duration // bound for the pdftotext subprocess; 0 = none

	LineTolerance   float64 // max baseline distance (pt) for glyphs on one line, default 2.5
	WordGap         float64 // gap (em) that inserts a space, default 0.15
	CellGap         float64 // gap (em) that starts a new cell, default 1.2
	ColumnTolerance float64 // max distance (pt) between cell starts sharing a column, default 10
	MaxWrapLines    int     // single-cell lines tolerated inside a table, default 3
}

func (c *Config) defaults() {
	if c.Backend == "" {
		c.Backend = BackendNative
	}
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.LineTolerance <= 0 {
		c.LineTolerance = 2.5
	}
	if c.WordGap <= 0 {
		c.WordGap = 0.15
	}
	if c.CellGap <= 0 {
		c.CellGap = 1.2
	}
	if c.ColumnTolerance <= 0 {
		c.ColumnTolerance = 10
	}
	if c.MaxWrapLines <= 0 {
		c.MaxWrapLines = 3
	}
}

// Cell is a run of text on a line separated from its neighbours by a wide gap.
type Cell struct {
	X     float64 // left edge
	Right float64
	Text  string
}

// Line is a row of cells sharing a baseline, ordered left to right.
type Line struct {
	Y     float64
	Cells []Cell
}

// Text joins the cells of the line with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Cells))
	for _, c := range l.Cells {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " ")
}

// Table is a reconstructed grid; every row has one entry per column anchor.
type Table struct {
	Rows [][]string
}

// Header returns the first row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Document is the first page of a PDF file.
type Document struct {
	Pages  int
	Lines  []Line
	tables []Table
}

// Text returns the first-page text, one line per text line, top to bottom.
func (d *Document) Text() string {
	out := make([]string, 0, len(d.Lines))
	for _, l := range d.Lines {
		out = append(out, l.Text())
	}
	return strings.Join(out, "\n")
}

// Tables returns the tables reconstructed from the first page.
func (d *Document) Tables() []Table {
	return d.tables
}

// NewDocument assembles a document from first-page lines and reconstructs its tables.
func NewDocument(pages int, lines []Line, cfg Config) *Document {
	cfg.defaults()
	doc := &Document{Pages: pages, Lines: lines}
	if pages > 0 {
		doc.tables = BuildTables(lines, cfg.ColumnTolerance, cfg.MaxWrapLines)
	}
	return doc
}

// backend turns the first page of a PDF into lines.
type backend interface {
	Name() string
	FirstPage(ctx context.Context, path string) (lines []Line, pages int, err error)
}

type Reader struct {
	cfg     Config
	backend backend
	logger  *slog.Logger
}

// NewReader builds a Reader for the configured backend.
func NewReader(cfg Config, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return newReader(cfg, execRunner{logger: logger}, logger)
}

func newReader(cfg Config, runner Runner, logger *slog.Logger) (*Reader, error) {
	cfg.defaults()
	r := &Reader{cfg: cfg, logger: logger}
	switch strings.ToLower(cfg.Backend) {
	case BackendNative:
		r.backend = nativeBackend{cfg: cfg}
	case BackendPdftotext:
		r.backend = pdftotextBackend{cfg: cfg, runner: runner}
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown pdf backend %q", cfg.Backend), common.ErrInvalidInput)
	}
	return r, nil
}

// Open reads the first page of the PDF at path. A file with zero pages yields an empty
// Document together with an error wrapping common.ErrEmptyDocument.
func (r *Reader) Open(ctx context.Context, path string) (*Document, error) {
	start := time.Now()
	pages, countErr := PageCount(path)
	if countErr != nil {
		r.logger.Debug("pdf.page_count.fallback", "path", path, "backend", r.backend.Name(), "error", countErr)
	}
	if countErr == nil && pages == 0 {
		return &Document{}, fmt.Errorf("%w: %s has no pages", common.ErrEmptyDocument, path)
	}

	lines, backendPages, err := r.backend.FirstPage(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrUnreadableFile) {
			return nil, err
		}
		return nil, common.Unreadable(err, "read pdf with %s", r.backend.Name())
	}
	if countErr != nil {
		pages = backendPages
	}

	doc := NewDocument(pages, lines, r.cfg)
	r.logger.Debug("pdf.read",
		"path", path,
		"backend", r.backend.Name(),
		"pages", doc.Pages,
		"lines", len(doc.Lines),
		"tables", len(doc.tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// PageCount returns the number of pages reported by pdfcpu under relaxed validation.
func PageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(f, conf)
}

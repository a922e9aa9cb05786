package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/extract"
	"github.com/joseph-ayodele/eventforms/internal/ingest"
)

// Ledger persists run outcomes. repository.LedgerRepository satisfies it.
type Ledger interface {
	StartRun(ctx context.Context, run *entity.Run) error
	RecordDocument(ctx context.Context, doc *entity.Document) error
	FinishRun(ctx context.Context, run *entity.Run) error
}

// Processor discovers the input documents and extracts them one after another.
type Processor struct {
	logger     *slog.Logger
	ingestor   ingest.Ingestor
	extractors map[string]extract.Extractor
	ledger     Ledger
	progress   io.Writer
}

type Option func(*Processor)

// WithLedger records the run and every document in l.
func WithLedger(l Ledger) Option {
	return func(p *Processor) { p.ledger = l }
}

// WithProgress sets where the per-file progress lines go (stdout by default).
func WithProgress(w io.Writer) Option {
	return func(p *Processor) { p.progress = w }
}

// NewProcessor wires the ingestor with one extractor per source format
// (constants.DOCX, constants.PDF).
func NewProcessor(logger *slog.Logger, ingestor ingest.Ingestor, extractors map[string]extract.Extractor, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:     logger,
		ingestor:   ingestor,
		extractors: extractors,
		progress:   os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every supported file under root. Per-file failures become error status
// rows; the returned error is reserved for an unreadable root, a ledger that cannot start
// the run, or cancellation. On cancellation the files handled so far are returned.
func (p *Processor) Run(ctx context.Context, root string, skipHidden bool) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.New()}
	ctx = common.WithRunID(ctx, res.RunID.String())
	logger := p.logger.With("run_id", res.RunID.String())

	files, stats, err := p.ingestor.IngestDirectory(ctx, root, skipHidden)
	res.Stats = stats
	if err != nil {
		logger.Error("pipeline.ingest.failed", "root", root, "error", err)
		return res, err
	}

	run := &entity.Run{ID: res.RunID, InputDir: root, StartedAt: start.UTC()}
	if p.ledger != nil {
		if err := p.ledger.StartRun(ctx, run); err != nil {
			return res, fmt.Errorf("start run: %w", err)
		}
	}

	var runErr error
	for _, sf := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("pipeline.cancelled", "remaining", len(files)-res.Processed-res.Failed, "error", err)
			runErr = err
			break
		}
		p.processFile(ctx, logger, res, sf)
	}

	fmt.Fprintf(p.progress, "Processing complete: %d processed, %d failed\n", res.Processed, res.Failed)

	if p.ledger != nil {
		finished := time.Now().UTC()
		run.FinishedAt = &finished
		run.Processed, run.Failed = res.Processed, res.Failed
		// the run row is closed even when ctx was cancelled
		if err := p.ledger.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			logger.Error("pipeline.ledger.finish_failed", "error", err)
		}
	}

	logger.Info("pipeline.done",
		"root", root,
		"processed", res.Processed,
		"failed", res.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, runErr
}

func (p *Processor) processFile(ctx context.Context, logger *slog.Logger, res *Result, sf ingest.SourceFile) {
	start := time.Now()
	status := entity.ProcessingStatus{Filename: sf.Name, SourcePath: sf.Path}

	rec, err := p.extract(ctx, sf)
	if err != nil {
		status.Status = constants.ErrorStatus(err.Error())
		status.Layout = constants.LayoutError
		res.Failed++
		fmt.Fprintf(p.progress, "%s - ERROR: %s\n", sf.Name, err.Error())
		logger.Warn("pipeline.file.failed", "path", sf.Path, "error", err)
	} else {
		status.Status = constants.StatusProcessed
		status.Layout = rec.Layout
		res.Processed++
		if replaced := res.put(NamedRecord{Name: sf.Name, Path: sf.Path, Record: rec}); replaced {
			logger.Warn("pipeline.duplicate_name", "name", sf.Name, "path", sf.Path)
		}
		fmt.Fprintf(p.progress, "%s - OK (%s)\n", sf.Name, rec.Layout)
		logger.Debug("pipeline.file.ok",
			"path", sf.Path,
			"layout", rec.Layout,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
	res.Statuses = append(res.Statuses, status)

	if p.ledger != nil {
		p.record(ctx, logger, res.RunID, sf, status, rec, err == nil)
	}
}

func (p *Processor) extract(ctx context.Context, sf ingest.SourceFile) (entity.Record, error) {
	if sf.Err != nil {
		return entity.NewRecord(constants.LayoutError), sf.Err
	}
	e, ok := p.extractors[sf.Format]
	if !ok {
		return entity.NewRecord(constants.LayoutError),
			common.NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("no extractor for %q", sf.Format), common.ErrInvalidInput)
	}
	return e.Extract(ctx, sf.Path)
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, runID uuid.UUID, sf ingest.SourceFile, status entity.ProcessingStatus, rec entity.Record, ok bool) {
	doc := &entity.Document{
		RunID:       runID,
		Filename:    sf.Name,
		SourcePath:  sf.Path,
		ContentHash: sf.HashHex,
		Layout:      string(status.Layout),
		Status:      status.Status,
	}
	if ok {
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			logger.Error("pipeline.ledger.marshal_failed", "path", sf.Path, "error", err)
		} else {
			doc.Fields = fields
		}
	}
	if err := p.ledger.RecordDocument(ctx, doc); err != nil {
		logger.Error("pipeline.ledger.record_failed", "path", sf.Path, "error", err)
	}
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/entity"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

type LedgerRepository interface {
	StartRun(ctx context.Context, run *entity.Run) error
	FinishRun(ctx context.Context, run *entity.Run) error
	RecordDocument(ctx context.Context, doc *entity.Document) error
	GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*entity.Run, error)
	ListDocuments(ctx context.Context, runID uuid.UUID) ([]*entity.Document, error)
	FindByHash(ctx context.Context, hashHex string) ([]*entity.Document, error)
}

type ledgerRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewLedgerRepository(db *DB, logger *slog.Logger) LedgerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ledgerRepo{db: db, logger: logger}
}

func (r *ledgerRepo) StartRun(ctx context.Context, run *entity.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, r.db.rebind(
		`INSERT INTO runs (id, input_dir, started_at, processed, failed) VALUES (?, ?, ?, ?, ?)`),
		run.ID.String(), run.InputDir, run.StartedAt, run.Processed, run.Failed)
	if err != nil {
		r.logger.Error("failed to start run", "run_id", run.ID, "error", err)
		return err
	}
	return nil
}

func (r *ledgerRepo) FinishRun(ctx context.Context, run *entity.Run) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	res, err := r.db.ExecContext(ctx, r.db.rebind(
		`UPDATE runs SET finished_at = ?, processed = ?, failed = ? WHERE id = ?`),
		*run.FinishedAt, run.Processed, run.Failed, run.ID.String())
	if err != nil {
		r.logger.Error("failed to finish run", "run_id", run.ID, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

func (r *ledgerRepo) RecordDocument(ctx context.Context, doc *entity.Document) error {
	if !constants.Layout(doc.Layout).Valid() {
		return common.NewAppError("INVALID_LAYOUT", fmt.Sprintf("unknown layout %q for %s", doc.Layout, doc.SourcePath), common.ErrInvalidInput)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	var fields sql.NullString
	if len(doc.Fields) > 0 {
		fields = sql.NullString{String: string(doc.Fields), Valid: true}
	}
	err := r.db.QueryRowContext(ctx, r.db.rebind(
		`INSERT INTO documents (run_id, filename, source_path, content_hash, layout, status, fields, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		doc.RunID.String(), doc.Filename, doc.SourcePath, doc.ContentHash, doc.Layout, doc.Status, fields, doc.CreatedAt,
	).Scan(&doc.ID)
	if err != nil {
		r.logger.Error("failed to record document", "run_id", doc.RunID, "source_path", doc.SourcePath, "error", err)
		return err
	}
	return nil
}

const runColumns = `id, input_dir, started_at, finished_at, processed, failed`

func (r *ledgerRepo) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (r *ledgerRepo) ListRuns(ctx context.Context, limit int) ([]*entity.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, r.db.rebind(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		r.logger.Error("failed to list runs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

const documentColumns = `id, run_id, filename, source_path, content_hash, layout, status, fields, created_at`

// ListDocuments returns the documents of a run in processing order.
func (r *ledgerRepo) ListDocuments(ctx context.Context, runID uuid.UUID) ([]*entity.Document, error) {
	return r.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents WHERE run_id = ? ORDER BY id`, runID.String())
}

// FindByHash returns every recorded document with the given content hash, oldest first.
func (r *ledgerRepo) FindByHash(ctx context.Context, hashHex string) ([]*entity.Document, error) {
	return r.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents WHERE content_hash = ? ORDER BY id`, hashHex)
}

func (r *ledgerRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to query documents", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		var (
			d      entity.Document
			runID  string
			fields sql.NullString
		)
		if err := rows.Scan(&d.ID, &runID, &d.Filename, &d.SourcePath, &d.ContentHash, &d.Layout, &d.Status, &fields, &d.CreatedAt); err != nil {
			return nil, err
		}
		if d.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("document %d: run id: %w", d.ID, err)
		}
		if fields.Valid {
			d.Fields = json.RawMessage(fields.String)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*entity.Run, error) {
	var (
		run      entity.Run
		id       string
		finished sql.NullTime
	)
	if err := s.Scan(&id, &run.InputDir, &run.StartedAt, &finished, &run.Processed, &run.Failed); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	run.ID = parsed
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

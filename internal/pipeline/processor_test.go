package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/docx/docxtest"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/extract"
	"github.com/joseph-ayodele/eventforms/internal/ingest"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc/pdftest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLedger struct {
	started, finished []*entity.Run
	docs              []*entity.Document
}

func (l *fakeLedger) StartRun(_ context.Context, run *entity.Run) error {
	l.started = append(l.started, run)
	return nil
}

func (l *fakeLedger) RecordDocument(_ context.Context, doc *entity.Document) error {
	l.docs = append(l.docs, doc)
	return nil
}

func (l *fakeLedger) FinishRun(_ context.Context, run *entity.Run) error {
	l.finished = append(l.finished, run)
	return nil
}

func newTestProcessor(t *testing.T, progress io.Writer, opts ...Option) *Processor {
	t.Helper()
	reader, err := pdfdoc.NewReader(pdfdoc.Config{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	extractors := map[string]extract.Extractor{
		constants.DOCX: extract.NewDocxExtractor(quietLogger()),
		constants.PDF:  extract.NewPDFExtractor(reader, keywords.Default(), quietLogger()),
	}
	opts = append([]Option{WithProgress(progress)}, opts...)
	return NewProcessor(quietLogger(), ingest.NewFSIngestor(quietLogger()), extractors, opts...)
}

func inputTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	docxtest.WriteTables(t, root, "a.docx", [][]string{{"1", "x", "Кафедра A"}})
	if err := os.WriteFile(filepath.Join(root, "b.docx"), []byte("not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	pdftest.Write(t, root, "c.pdf", "Some free text")
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	docxtest.WriteTables(t, sub, "a.docx", [][]string{{"1", "x", "Кафедра B"}})
	return root
}

func TestRun(t *testing.T) {
	var progress bytes.Buffer
	ledger := &fakeLedger{}
	p := newTestProcessor(t, &progress, WithLedger(ledger))

	res, err := p.Run(context.Background(), inputTree(t), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Processed != 3 || res.Failed != 1 {
		t.Fatalf("processed=%d failed=%d, want 3/1", res.Processed, res.Failed)
	}
	if len(res.Statuses) != 4 {
		t.Fatalf("statuses = %d, want 4", len(res.Statuses))
	}

	bad := res.Statuses[1]
	if bad.Filename != "b.docx" || bad.Layout != constants.LayoutError || !strings.HasPrefix(bad.Status, "Error: ") {
		t.Errorf("b.docx status = %+v", bad)
	}
	if pdf := res.Statuses[2]; pdf.Status != constants.StatusProcessed || pdf.Layout != constants.LayoutPDFText {
		t.Errorf("c.pdf status = %+v", pdf)
	}

	// sub/a.docx replaces a.docx in place; the failed file has no record
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(res.Records))
	}
	if res.Records[0].Name != "a.docx" || res.Records[1].Name != "c.pdf" {
		t.Errorf("record order = %q, %q", res.Records[0].Name, res.Records[1].Name)
	}
	if got := res.Records[0].Record.Fields.Get(constants.Department); got != "Кафедра B" {
		t.Errorf("duplicate name kept %q, want later record", got)
	}

	out := progress.String()
	for _, want := range []string{
		"a.docx - OK (old)\n",
		"b.docx - ERROR: ",
		"c.pdf - OK (pdf_text)\n",
		"Processing complete: 3 processed, 1 failed\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress missing %q in:\n%s", want, out)
		}
	}

	if len(ledger.started) != 1 || len(ledger.finished) != 1 {
		t.Fatalf("ledger runs started=%d finished=%d", len(ledger.started), len(ledger.finished))
	}
	if ledger.finished[0].Processed != 3 || ledger.finished[0].FinishedAt == nil {
		t.Errorf("finished run = %+v", ledger.finished[0])
	}
	if len(ledger.docs) != 4 {
		t.Fatalf("ledger docs = %d", len(ledger.docs))
	}
	if ledger.docs[1].Fields != nil {
		t.Errorf("failed document stored fields %s", ledger.docs[1].Fields)
	}
	if ledger.docs[0].ContentHash == "" || len(ledger.docs[0].Fields) == 0 {
		t.Errorf("document row incomplete: %+v", ledger.docs[0])
	}
}

func TestRunMissingRoot(t *testing.T) {
	p := newTestProcessor(t, io.Discard)
	if _, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), true); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestProcessor(t, io.Discard)
	res, err := p.Run(ctx, inputTree(t), true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res == nil || res.Processed != 0 {
		t.Fatalf("res = %+v", res)
	}
}

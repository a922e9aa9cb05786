package pdfdoc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc/pdftest"
)

type fakeRunner struct {
	stdout, stderr string
	err            error
	calls          [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPdftotextBackend(t *testing.T) {
	runner := &fakeRunner{stdout: "Заявка\n\nОрганизатор        Кафедра физики\nДаты проведения    12 мая\n\f"}
	r, err := newReader(Config{Backend: BackendPdftotext}, runner, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	// not a real file: pdfcpu fails and the page count falls back to the backend
	doc, err := r.Open(context.Background(), filepath.Join(t.TempDir(), "form.pdf"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Pages != 1 {
		t.Errorf("pages = %d, want 1", doc.Pages)
	}
	if got := doc.Text(); !strings.Contains(got, "Организатор Кафедра физики") {
		t.Errorf("text = %q", got)
	}
	if n := len(doc.Tables()); n != 1 {
		t.Fatalf("tables = %d, want 1", n)
	}
	if h := doc.Tables()[0].Header(); h[0] != "Организатор" || h[1] != "Кафедра физики" {
		t.Errorf("header = %q", h)
	}

	args := strings.Join(runner.calls[0], " ")
	if !strings.HasPrefix(args, "pdftotext -layout") || !strings.Contains(args, "-f 1 -l 1") {
		t.Errorf("unexpected invocation %q", args)
	}
}

func TestPdftotextFailureIsUnreadable(t *testing.T) {
	runner := &fakeRunner{stderr: "Syntax Error: Couldn't read xref table", err: errors.New("exit status 1")}
	r, err := newReader(Config{Backend: BackendPdftotext}, runner, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Open(context.Background(), filepath.Join(t.TempDir(), "broken.pdf"))
	if !errors.Is(err, common.ErrUnreadableFile) {
		t.Fatalf("err = %v, want ErrUnreadableFile", err)
	}
	if !strings.Contains(err.Error(), "xref") {
		t.Errorf("stderr not surfaced: %v", err)
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := NewReader(Config{Backend: "ocr"}, quietLogger())
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNativeBackend(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "hello.pdf", "Hello world", "Second line")

	n, err := PageCount(path)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("PageCount = %d, want 1", n)
	}

	r, err := NewReader(Config{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := r.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.Pages != 1 {
		t.Errorf("pages = %d", doc.Pages)
	}
	text := doc.Text()
	if !strings.Contains(text, "Hello") || !strings.Contains(text, "Second") {
		t.Errorf("text = %q", text)
	}
	if len(doc.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(doc.Lines))
	}
}

func TestNativeBackendTable(t *testing.T) {
	path := pdftest.Write(t, t.TempDir(), "form.pdf",
		"Registration form",
		"Organizer\tPhysics dept",
		"Title\tConference X",
		"Participants\t40",
	)
	r, err := NewReader(Config{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := r.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(doc.Lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(doc.Lines))
	}
	if cells := doc.Lines[1].Cells; len(cells) != 2 || cells[0].Text != "Organizer" || cells[1].Text != "Physics dept" {
		t.Fatalf("cells = %+v", cells)
	}
	if cells := doc.Lines[1].Cells; cells[0].Right <= cells[0].X {
		t.Errorf("glyph widths not applied: %+v", cells[0])
	}
	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	if got := len(tables[0].Rows); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if h := tables[0].Header(); h[0] != "Organizer" || h[1] != "Physics dept" {
		t.Errorf("header = %q", h)
	}
}

func TestNativeBackendGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nthis is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(Config{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Open(context.Background(), path); !errors.Is(err, common.ErrUnreadableFile) {
		t.Fatalf("err = %v, want ErrUnreadableFile", err)
	}
}

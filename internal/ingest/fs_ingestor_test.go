package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/docx/docxtest"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc/pdftest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	docxtest.WriteTables(t, root, "a.docx", [][]string{{"x"}})
	pdftest.Write(t, root, "b.pdf", "hello")
	writeFile(t, filepath.Join(root, "c.txt"), []byte("notes"))
	writeFile(t, filepath.Join(root, "fake.pdf"), []byte("\x89PNG\r\n\x1a\n0000000000000000"))
	writeFile(t, filepath.Join(root, "sub", "d.PDF"), pdftest.Bytes("nested"))
	writeFile(t, filepath.Join(root, ".hidden", "x.pdf"), pdftest.Bytes("hidden"))
	writeFile(t, filepath.Join(root, "~$a.docx"), []byte("lock"))
	return root
}

func TestIngestDirectory(t *testing.T) {
	root := fixtureTree(t)
	ing := NewFSIngestor(quietLogger())

	files, stats, err := ing.IngestDirectory(context.Background(), root, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}

	wantNames := []string{"a.docx", "b.pdf", "fake.pdf", "d.PDF"}
	if len(files) != len(wantNames) {
		t.Fatalf("files = %d, want %d: %+v", len(files), len(wantNames), files)
	}
	for i, name := range wantNames {
		if files[i].Name != name {
			t.Errorf("files[%d] = %q, want %q", i, files[i].Name, name)
		}
	}

	want := DirStats{Scanned: 6, Matched: 4, Docx: 1, PDF: 3, Failed: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	if files[0].Format != constants.DOCX || files[1].Format != constants.PDF {
		t.Errorf("formats = %q, %q", files[0].Format, files[1].Format)
	}
	if files[1].Kind != "application/pdf" {
		t.Errorf("pdf kind = %q", files[1].Kind)
	}
	if !errors.Is(files[2].Err, common.ErrUnreadableFile) {
		t.Errorf("fake.pdf err = %v, want ErrUnreadableFile", files[2].Err)
	}
	for _, i := range []int{0, 1, 3} {
		if files[i].Failed() {
			t.Errorf("%s failed: %v", files[i].Name, files[i].Err)
		}
	}
}

func TestIngestDirectoryIncludesHidden(t *testing.T) {
	root := fixtureTree(t)
	files, stats, err := NewFSIngestor(quietLogger()).IngestDirectory(context.Background(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Matched != 5 {
		t.Fatalf("matched = %d, want 5", stats.Matched)
	}
	if files[0].Name != "x.pdf" {
		t.Fatalf("first file = %q, want hidden x.pdf", files[0].Name)
	}
}

func TestIngestDirectoryMissingRoot(t *testing.T) {
	_, _, err := NewFSIngestor(quietLogger()).IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), true)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if _, _, err := NewFSIngestor(quietLogger()).IngestDirectory(context.Background(), " ", true); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("blank root err = %v", err)
	}
}

func TestIngestPathHash(t *testing.T) {
	dir := t.TempDir()
	data := pdftest.Bytes("hash me")
	path := filepath.Join(dir, "h.pdf")
	writeFile(t, path, data)

	sf, err := NewFSIngestor(quietLogger()).IngestPath(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)
	if sf.HashHex != hex.EncodeToString(sum[:]) {
		t.Errorf("hash = %s", sf.HashHex)
	}
	if sf.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", sf.Size, len(data))
	}
}

func TestIngestPathUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, []byte("x"))
	sf, err := NewFSIngestor(quietLogger()).IngestPath(context.Background(), path)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
	if sf.Name != "notes.txt" {
		t.Fatalf("name = %q", sf.Name)
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		path           string
		hidden, locked bool
	}{
		{"a/.git", true, false},
		{".", false, false},
		{"dir/~$form.docx", false, true},
		{"dir/form.docx", false, false},
	}
	for _, tt := range tests {
		if got := IsHidden(tt.path); got != tt.hidden {
			t.Errorf("IsHidden(%q) = %v", tt.path, got)
		}
		if got := IsLockFile(tt.path); got != tt.locked {
			t.Errorf("IsLockFile(%q) = %v", tt.path, got)
		}
	}
	if !AllowedExt(".PDF") || AllowedExt("txt") {
		t.Error("AllowedExt mismatch")
	}
}

// Package docxtest builds minimal .docx archives for tests.
package docxtest

import (
	"archive/zip"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	footer = `<w:sectPr/></w:body></w:document>`
)

// Table renders rows of plain cells as a w:tbl element. A cell containing "\n" becomes
// several paragraphs.
func Table(rows [][]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc>")
			for _, para := range strings.Split(cell, "\n") {
				b.WriteString(Paragraph(para))
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// Paragraph renders text as a single-run w:p element.
func Paragraph(text string) string {
	var esc strings.Builder
	_ = xml.EscapeText(&esc, []byte(text))
	return `<w:p><w:r><w:t xml:space="preserve">` + esc.String() + `</w:t></w:r></w:p>`
}

// Document wraps body elements into a complete document part.
func Document(body ...string) string {
	return header + strings.Join(body, "") + footer
}

// Write stores a .docx archive containing documentXML as word/document.xml and returns
// its path.
func Write(t testing.TB, dir, name, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   documentXML,
	}
	for _, n := range []string{"[Content_Types].xml", "word/document.xml"} {
		fw, err := w.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(parts[n])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteTables is Write for a document made only of simple tables.
func WriteTables(t testing.TB, dir, name string, tables ...[][]string) string {
	t.Helper()
	body := make([]string, 0, len(tables))
	for _, tbl := range tables {
		body = append(body, Table(tbl))
	}
	return Write(t, dir, name, Document(body...))
}

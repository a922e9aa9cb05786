// Package docx reads the body-level tables of a Word document.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/eventforms/internal/common"
)

const documentPart = "word/document.xml"

// subtrees that carry no cell text: paragraph properties (tab stops), text boxes
// anchored in runs, and the legacy copy of alternate content
var skipped = map[string]bool{
	"pPr":         true,
	"txbxContent": true,
	"Fallback":    true,
}

// Document is the table view of a .docx file.
type Document struct {
	Tables []Table
}

// Table is a grid of cell texts. Merged cells are expanded so that every grid column of
// a row holds the text of the cell covering it.
type Table struct {
	Rows []Row
}

// Row holds the cell texts of one table row.
type Row struct {
	Cells []string
}

// Cell returns the text at (row, col) and whether that position exists.
func (t Table) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	cells := t.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return "", false
	}
	return cells[col], true
}

// Cell returns the text at (table, row, col) and whether that position exists.
func (d *Document) Cell(table, row, col int) (string, bool) {
	if d == nil || table < 0 || table >= len(d.Tables) {
		return "", false
	}
	return d.Tables[table].Cell(row, col)
}

// Open reads the tables of the document at path.
func Open(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, common.Unreadable(err, "open docx")
	}
	defer r.Close()

	var part *zip.File
	for _, f := range r.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, common.Unreadable(nil, "%s not found in archive", documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, common.Unreadable(err, "open %s", documentPart)
	}
	defer rc.Close()

	doc, err := Parse(rc)
	if err != nil {
		return nil, common.Unreadable(err, "parse %s", documentPart)
	}
	return doc, nil
}

type cellState struct {
	paragraphs []string
	para       strings.Builder
	inPara     bool
	pDepth     int
	span       int
	vMerge     string // "", "restart" or "continue"
}

type tableState struct {
	rows []Row
	row  []string
	cell *cellState
}

// Parse walks a WordprocessingML document part and collects its body-level tables.
// Nested tables and text boxes do not contribute to the text of the cell that contains
// them.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{}

	var (
		depth int // table nesting depth; 1 is body level
		tbl   *tableState
		inT   bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipped[t.Name.Local] {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("decode xml: %w", err)
				}
				continue
			}
			if t.Name.Local == "tbl" {
				depth++
				if depth == 1 {
					tbl = &tableState{}
				}
				continue
			}
			if depth != 1 {
				continue
			}
			switch t.Name.Local {
			case "tr":
				tbl.row = nil
			case "tc":
				tbl.cell = &cellState{span: 1}
			case "gridSpan":
				if tbl.cell != nil {
					if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
						tbl.cell.span = n
					}
				}
			case "vMerge":
				if tbl.cell != nil {
					if attr(t, "val") == "restart" {
						tbl.cell.vMerge = "restart"
					} else {
						tbl.cell.vMerge = "continue"
					}
				}
			case "p":
				if tbl.cell != nil {
					tbl.cell.pDepth++
					if tbl.cell.pDepth == 1 {
						tbl.cell.inPara = true
						tbl.cell.para.Reset()
					}
				}
			case "t":
				inT = tbl.cell != nil && tbl.cell.inPara
			case "tab":
				if tbl.cell != nil && tbl.cell.inPara {
					tbl.cell.para.WriteByte('\t')
				}
			case "br", "cr":
				if tbl.cell != nil && tbl.cell.inPara {
					tbl.cell.para.WriteByte('\n')
				}
			}

		case xml.CharData:
			if depth == 1 && inT {
				tbl.cell.para.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "tbl" {
				if depth == 1 && tbl != nil {
					doc.Tables = append(doc.Tables, Table{Rows: tbl.rows})
					tbl = nil
				}
				depth--
				continue
			}
			if depth != 1 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inT = false
			case "p":
				if tbl.cell == nil || tbl.cell.pDepth == 0 {
					break
				}
				tbl.cell.pDepth--
				if tbl.cell.pDepth == 0 && tbl.cell.inPara {
					tbl.cell.paragraphs = append(tbl.cell.paragraphs, tbl.cell.para.String())
					tbl.cell.inPara = false
				}
			case "tc":
				if tbl.cell != nil {
					tbl.closeCell()
				}
			case "tr":
				tbl.rows = append(tbl.rows, Row{Cells: tbl.row})
				tbl.row = nil
			}
		}
	}
	return doc, nil
}

func (s *tableState) closeCell() {
	text := strings.Join(s.cell.paragraphs, "\n")
	if s.cell.vMerge == "continue" && len(s.rows) > 0 {
		above := s.rows[len(s.rows)-1].Cells
		if col := len(s.row); col < len(above) {
			text = above[col]
		}
	}
	for i := 0; i < s.cell.span; i++ {
		s.row = append(s.row, text)
	}
	s.cell = nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

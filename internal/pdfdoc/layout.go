package pdfdoc

import (
	"math"
	"sort"
	"strings"
)

// Glyph is a positioned text fragment as reported by the PDF content stream.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// GroupLines arranges glyphs into lines top to bottom. Glyphs whose baselines lie within
// cfg.LineTolerance share a line; inside a line a gap wider than cfg.CellGap em starts a
// new cell and a gap wider than cfg.WordGap em inserts a space.
func GroupLines(glyphs []Glyph, cfg Config) []Line {
	cfg.defaults()
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	// PDF user space grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var (
		lines []Line
		row   []Glyph
		rowY  float64
	)
	flush := func() {
		if len(row) == 0 {
			return
		}
		if l := buildLine(row, rowY, cfg); len(l.Cells) > 0 {
			lines = append(lines, l)
		}
		row = row[:0]
	}
	for _, g := range sorted {
		if len(row) > 0 && math.Abs(rowY-g.Y) > cfg.LineTolerance {
			flush()
		}
		if len(row) == 0 {
			rowY = g.Y
		}
		row = append(row, g)
	}
	flush()
	return lines
}

func buildLine(glyphs []Glyph, y float64, cfg Config) Line {
	ordered := make([]Glyph, len(glyphs))
	copy(ordered, glyphs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].X < ordered[j].X })

	line := Line{Y: y}
	var (
		cur      *Cell
		b        strings.Builder
		prevEnd  float64
		pendingS bool
	)
	closeCell := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			line.Cells = append(line.Cells, *cur)
		}
		cur = nil
		b.Reset()
	}
	for _, g := range ordered {
		if strings.TrimSpace(g.S) == "" {
			pendingS = cur != nil
			continue
		}
		em := g.FontSize
		if em <= 0 {
			em = 10
		}
		gap := g.X - prevEnd
		switch {
		case cur == nil:
		case gap > cfg.CellGap*em:
			closeCell()
		case pendingS || gap > cfg.WordGap*em:
			b.WriteByte(' ')
		}
		if cur == nil {
			cur = &Cell{X: g.X}
		}
		b.WriteString(g.S)
		prevEnd = g.X + g.W
		cur.Right = prevEnd
		pendingS = false
	}
	closeCell()
	return line
}

// BuildTables reconstructs tables from lines. A table is a run of at least two
// multi-cell lines; up to maxWrap single-cell lines between them are treated as wrapped
// continuations of the preceding row.
func BuildTables(lines []Line, colTolerance float64, maxWrap int) []Table {
	var tables []Table
	i := 0
	for i < len(lines) {
		if len(lines[i].Cells) < 2 {
			i++
			continue
		}
		block := []Line{lines[i]}
		j := i + 1
		for j < len(lines) {
			if len(lines[j].Cells) >= 2 {
				block = append(block, lines[j])
				j++
				continue
			}
			k := j
			for k < len(lines) && len(lines[k].Cells) < 2 && k-j < maxWrap {
				k++
			}
			if k < len(lines) && len(lines[k].Cells) >= 2 {
				block = append(block, lines[j:k]...)
				j = k
				continue
			}
			break
		}
		if multiCell(block) >= 2 {
			tables = append(tables, gridFromBlock(block, colTolerance))
		}
		i = j
	}
	return tables
}

func multiCell(block []Line) int {
	n := 0
	for _, l := range block {
		if len(l.Cells) >= 2 {
			n++
		}
	}
	return n
}

func gridFromBlock(block []Line, tol float64) Table {
	var xs []float64
	for _, l := range block {
		if len(l.Cells) < 2 {
			continue
		}
		for _, c := range l.Cells {
			xs = append(xs, c.X)
		}
	}
	anchors := clusterAnchors(xs, tol)

	var t Table
	for _, l := range block {
		if len(l.Cells) < 2 {
			if len(t.Rows) == 0 {
				continue
			}
			// wrapped text belongs to the previous row
			prev := t.Rows[len(t.Rows)-1]
			col := nearestAnchor(anchors, l.Cells[0].X)
			prev[col] = joinNonEmpty(prev[col], l.Cells[0].Text)
			continue
		}
		row := make([]string, len(anchors))
		for _, c := range l.Cells {
			col := nearestAnchor(anchors, c.X)
			row[col] = joinNonEmpty(row[col], c.Text)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// clusterAnchors groups sorted x positions; a position further than tol from the start
// of the current cluster opens a new column.
func clusterAnchors(xs []float64, tol float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	anchors := []float64{sorted[0]}
	for _, x := range sorted[1:] {
		if x-anchors[len(anchors)-1] > tol {
			anchors = append(anchors, x)
		}
	}
	return anchors
}

func nearestAnchor(anchors []float64, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range anchors {
		if d := math.Abs(a - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

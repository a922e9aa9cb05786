package pdfdoc

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/eventforms/internal/common"
)

const (
	// pdftotext -layout renders roughly one character per this many points
	layoutCharWidth = 6.0
	layoutLineStep  = 12.0
)

// runs of text separated by at most one space
var reLayoutCell = regexp.MustCompile(`\S+(?: \S+)*`)

type pdftotextBackend struct {
	cfg    Config
	runner Runner
}

func (pdftotextBackend) Name() string { return BackendPdftotext }

func (b pdftotextBackend) FirstPage(ctx context.Context, path string) ([]Line, int, error) {
	ctx, cancel := common.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	// pdftotext -layout -enc UTF-8 -eol unix -f 1 -l 1 <path> -
	out, errb, err := b.runner.Run(ctx, b.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", "-f", "1", "-l", "1", path, "-")
	if err != nil {
		msg := strings.TrimSpace(truncate(string(errb), 512))
		if msg == "" {
			msg = "pdftotext failed"
		}
		return nil, 0, common.Unreadable(err, "%s", msg)
	}

	text := string(out)
	pages := strings.Count(text, "\f")
	if pages == 0 && strings.TrimSpace(text) != "" {
		pages = 1
	}
	return LayoutLines(Normalize(text)), pages, nil
}

// LayoutLines splits pdftotext -layout output into lines of cells. Runs of two or more
// spaces separate cells; column offsets are converted to points.
func LayoutLines(text string) []Line {
	var lines []Line
	for i, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line := Line{Y: float64(i) * layoutLineStep}
		for _, loc := range reLayoutCell.FindAllStringIndex(raw, -1) {
			col := utf8.RuneCountInString(raw[:loc[0]])
			s := raw[loc[0]:loc[1]]
			width := utf8.RuneCountInString(s)
			line.Cells = append(line.Cells, Cell{
				X:     float64(col) * layoutCharWidth,
				Right: float64(col+width) * layoutCharWidth,
				Text:  s,
			})
		}
		lines = append(lines, line)
	}
	return lines
}

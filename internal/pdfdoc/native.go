package pdfdoc

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/eventforms/internal/common"
)

type nativeBackend struct {
	cfg Config
}

func (nativeBackend) Name() string { return BackendNative }

// FirstPage lays out the glyphs of page 1. The pdf library panics on some malformed
// files; those panics surface as unreadable-file errors.
func (b nativeBackend) FirstPage(_ context.Context, path string) (lines []Line, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			lines, pages = nil, 0
			err = common.Unreadable(fmt.Errorf("pdf library panic: %v", rec), "read pdf")
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, 0, common.Unreadable(err, "open pdf")
	}
	defer f.Close()

	pages = r.NumPage()
	if pages == 0 {
		return nil, 0, nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return nil, pages, nil
	}

	content := page.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return GroupLines(glyphs, b.cfg), pages, nil
}

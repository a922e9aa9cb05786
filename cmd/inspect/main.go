package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/entity"
	"github.com/joseph-ayodele/eventforms/internal/extract"
	"github.com/joseph-ayodele/eventforms/internal/ingest"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
)

func main() {
	cfg := common.LoadConfig()

	var (
		pdfBackend = flag.String("pdf-backend", cfg.PDF.Backend, "PDF text backend: native or pdftotext")
		kwFile     = flag.String("keywords", cfg.Input.KeywordsFile, "YAML keyword mapping overriding the built-in one")
		showLines  = flag.Bool("lines", false, "also print the PDF lines and reconstructed tables")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: inspect [flags] <file.docx|file.pdf>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mapping := keywords.Default()
	if *kwFile != "" {
		m, err := keywords.LoadFile(*kwFile)
		if err != nil {
			logger.Error("load keywords", "path", *kwFile, "error", err)
			os.Exit(1)
		}
		mapping = m
	}

	reader, err := pdfdoc.NewReader(pdfdoc.Config{
		Backend:   strings.ToLower(*pdfBackend),
		Pdftotext: cfg.PDF.Pdftotext,
		Timeout:   cfg.PDF.Timeout,
	}, logger)
	if err != nil {
		logger.Error("pdf reader", "error", err)
		os.Exit(2)
	}

	sf, err := ingest.NewFSIngestor(logger).IngestPath(ctx, path)
	if err != nil {
		logger.Error("ingest", "path", path, "error", err)
		os.Exit(1)
	}

	var ex extract.Extractor
	switch sf.Format {
	case constants.DOCX:
		ex = extract.NewDocxExtractor(logger)
	case constants.PDF:
		ex = extract.NewPDFExtractor(reader, mapping, logger)
		if *showLines {
			if err := printPDF(ctx, reader, path); err != nil {
				logger.Error("read pdf", "path", path, "error", err)
				os.Exit(1)
			}
		}
	default:
		logger.Error("unsupported format", "path", path, "format", sf.Format)
		os.Exit(1)
	}

	start := time.Now()
	rec, err := ex.Extract(ctx, path)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	if err := printRecord(sf, rec); err != nil {
		logger.Error("print record", "error", err)
		os.Exit(1)
	}
}

func printRecord(sf ingest.SourceFile, rec entity.Record) error {
	data, err := rec.Fields.MarshalJSON()
	if err != nil {
		return err
	}
	fmt.Printf("file:   %s\n", sf.Name)
	fmt.Printf("sha256: %s\n", sf.HashHex)
	fmt.Printf("layout: %s\n", rec.Layout)
	fields := constants.CanonicalFields()
	filled := 0
	for _, f := range fields {
		if rec.Fields.Filled(f) {
			filled++
		}
	}
	fmt.Printf("filled: %d/%d\n", filled, len(fields))
	fmt.Println(string(data))
	return nil
}

func printPDF(ctx context.Context, reader *pdfdoc.Reader, path string) error {
	doc, err := reader.Open(ctx, path)
	if errors.Is(err, common.ErrEmptyDocument) {
		fmt.Println("pages: 0")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("pages: %d\n", doc.Pages)
	for i, l := range doc.Lines {
		cells := make([]string, len(l.Cells))
		for j, c := range l.Cells {
			cells[j] = fmt.Sprintf("%.0f:%s", c.X, c.Text)
		}
		fmt.Printf("%3d y=%.1f | %s\n", i, l.Y, strings.Join(cells, " | "))
	}
	for i, t := range doc.Tables() {
		fmt.Printf("table %d (%d rows)\n", i, len(t.Rows))
		for _, row := range t.Rows {
			fmt.Printf("  %q\n", row)
		}
	}
	fmt.Println()
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
	"github.com/joseph-ayodele/eventforms/internal/export"
	"github.com/joseph-ayodele/eventforms/internal/extract"
	"github.com/joseph-ayodele/eventforms/internal/ingest"
	"github.com/joseph-ayodele/eventforms/internal/keywords"
	"github.com/joseph-ayodele/eventforms/internal/pdfdoc"
	"github.com/joseph-ayodele/eventforms/internal/pipeline"
	repo "github.com/joseph-ayodele/eventforms/internal/repository"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitUsage  = 2
	exitFailed = 3
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := common.LoadConfig()

	// Parse CLI flags; env values are the defaults
	var (
		in         = flag.String("in", cfg.Input.Dir, "directory with .docx/.pdf event forms")
		xlsxPath   = flag.String("xlsx", cfg.Output.XLSXPath, "output XLSX file path")
		jsonPath   = flag.String("json", cfg.Output.JSONPath, "output JSON file path")
		kwFile     = flag.String("keywords", cfg.Input.KeywordsFile, "YAML keyword mapping overriding the built-in one")
		dsn        = flag.String("db", cfg.Database.DSN, "run ledger DSN (postgres:// URL or SQLite path); empty disables it")
		pdfBackend = flag.String("pdf-backend", cfg.PDF.Backend, "PDF text backend: native or pdftotext")
		logLevel   = flag.String("log-level", cfg.Log.Level, "log level: debug, info, warn or error")
		strict     = flag.Bool("strict", cfg.Output.Strict, "exit with code 3 if any file failed")
	)
	flag.Parse()

	cfg.Input.Dir = *in
	cfg.Input.KeywordsFile = *kwFile
	cfg.Output.XLSXPath = *xlsxPath
	cfg.Output.JSONPath = *jsonPath
	cfg.Output.Strict = *strict
	cfg.Database.DSN = *dsn
	cfg.PDF.Backend = *pdfBackend
	cfg.Log.Level = *logLevel
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		flag.Usage()
		return exitUsage
	}

	// Setup logger
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mapping := keywords.Default()
	if cfg.Input.KeywordsFile != "" {
		m, err := keywords.LoadFile(cfg.Input.KeywordsFile)
		if err != nil {
			logger.Error("failed to load keywords", "path", cfg.Input.KeywordsFile, "error", err)
			return exitFatal
		}
		mapping = m
		logger.Info("keywords loaded", "path", cfg.Input.KeywordsFile)
	}

	exporter, err := export.NewService(logger)
	if err != nil {
		logger.Error("failed to initialize exporter", "error", err)
		return exitFatal
	}
	if err := exporter.Reset(cfg.Output.XLSXPath, cfg.Output.JSONPath); err != nil {
		logger.Error("failed to reset outputs", "xlsx", cfg.Output.XLSXPath, "json", cfg.Output.JSONPath, "error", err)
		return exitFatal
	}

	reader, err := pdfdoc.NewReader(pdfdoc.Config{
		Backend:   cfg.PDF.Backend,
		Pdftotext: cfg.PDF.Pdftotext,
		Timeout:   cfg.PDF.Timeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize pdf reader", "error", err)
		return exitFatal
	}

	extractors := map[string]extract.Extractor{
		constants.DOCX: extract.NewDocxExtractor(logger),
		constants.PDF:  extract.NewPDFExtractor(reader, mapping, logger),
	}

	var opts []pipeline.Option
	if cfg.Database.DSN != "" {
		db, err := repo.Open(ctx, repo.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open run ledger", "error", err)
			return exitFatal
		}
		defer repo.Close(db, logger)
		opts = append(opts, pipeline.WithLedger(repo.NewLedgerRepository(db, logger)))
	}

	processor := pipeline.NewProcessor(logger, ingest.NewFSIngestor(logger), extractors, opts...)

	logger.Info("starting batch", "dir", cfg.Input.Dir, "pdf_backend", cfg.PDF.Backend)
	start := time.Now()
	res, runErr := processor.Run(ctx, cfg.Input.Dir, cfg.Input.SkipHidden)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("batch failed", "dir", cfg.Input.Dir, "error", runErr)
		return exitFatal
	}

	// Whatever was processed before an interrupt is still written out
	if res != nil {
		if err := exporter.Write(cfg.Output.XLSXPath, cfg.Output.JSONPath, res); err != nil {
			logger.Error("failed to write outputs", "error", err)
			return exitFatal
		}
	}
	if runErr != nil {
		logger.Warn("batch interrupted", "error", runErr)
		return exitFatal
	}

	logger.Info("batch finished",
		"run_id", res.RunID,
		"processed", res.Processed,
		"failed", res.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Scanned: %d\n", res.Stats.Scanned)
	fmt.Printf("  Matched: %d (docx: %d, pdf: %d)\n", res.Stats.Matched, res.Stats.Docx, res.Stats.PDF)
	fmt.Printf("  Processed: %d\n", res.Processed)
	fmt.Printf("  Failed: %d\n", res.Failed)
	fmt.Printf("  Results: %s, %s\n", cfg.Output.XLSXPath, cfg.Output.JSONPath)
	for _, st := range res.Statuses {
		if st.Failed() {
			fmt.Printf("  ! %s: %s\n", st.SourcePath, st.Status)
		}
	}

	if cfg.Output.Strict && res.Failed > 0 {
		return exitFailed
	}
	return exitOK
}

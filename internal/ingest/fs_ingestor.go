package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/joseph-ayodele/eventforms/constants"
	"github.com/joseph-ayodele/eventforms/internal/common"
)

// bytes needed by the magic-number matchers
const sniffLen = 8 << 10

// content kinds accepted for each declared format; anything else recognized is a mismatch
var acceptedKinds = map[string]map[string]struct{}{
	constants.DOCX: {"docx": {}, "zip": {}},
	constants.PDF:  {"pdf": {}},
}

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	logger *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{logger: logger}
}

// IngestPath hashes and sniffs one file. The returned SourceFile carries Path, Name and
// Format even when err is non-nil.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (SourceFile, error) {
	out := SourceFile{Path: path, Name: filepath.Base(path)}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	out.Format = constants.MapExtToFormat(ext)
	if out.Format == "" {
		return out, common.NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return out, common.Unreadable(err, "open")
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("ingest.close_failed", "path", path, "error", err)
		}
	}(f)

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return out, common.Unreadable(err, "read")
	}
	head = head[:n]

	h := sha256.New()
	h.Write(head)
	rest, err := io.Copy(h, f)
	if err != nil {
		return out, common.Unreadable(err, "hash")
	}
	out.Size = int64(n) + rest
	out.HashHex = hex.EncodeToString(h.Sum(nil))

	kind, _ := filetype.Match(head)
	if kind != filetype.Unknown {
		out.Kind = kind.MIME.Value
		if _, ok := acceptedKinds[out.Format][kind.Extension]; !ok {
			return out, common.Unreadable(nil, "content is %s, not %s", kind.Extension, ext)
		}
	}
	return out, nil
}

// IngestDirectory walks root in lexical order, keeps .docx and .pdf files, and inspects
// each of them. Files that fail inspection are returned with Err set; only an unreadable
// root aborts the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]SourceFile, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("INPUT_ERROR", "input directory is required", common.ErrInvalidInput)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, DirStats{}, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, DirStats{}, common.NewAppError("INPUT_ERROR", fmt.Sprintf("%s is not a directory", root), common.ErrInvalidInput)
	}

	var results []SourceFile
	var stats DirStats

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Scanned++
			stats.Failed++
			results = append(results, SourceFile{Path: path, Name: filepath.Base(path), Err: common.Unreadable(walkErr, "walk")})
			i.logger.Warn("ingest.walk_failed", "path", path, "error", walkErr)
			return nil
		}
		if path == root {
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) || IsLockFile(path) {
			return nil
		}
		stats.Matched++

		sf, err := i.IngestPath(ctx, path)
		switch sf.Format {
		case constants.DOCX:
			stats.Docx++
		case constants.PDF:
			stats.PDF++
		}
		if err != nil {
			sf.Err = err
			stats.Failed++
			i.logger.Warn("ingest.file_failed", "path", path, "error", err)
		}
		results = append(results, sf)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.logger.Info("ingest.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"docx", stats.Docx,
		"pdf", stats.PDF,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

package scan

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// ProbeFile stats path and returns its normalized metadata (C1,
// spec.md §4.1). Failure to stat or read the path is not raised to the
// caller as a generic error — it is always an *errors.IngestError typed
// ErrorTypeMetadataUnavailable, which the coordinator treats as a skip.
func ProbeFile(path string) (types.FileMeta, error) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return types.FileMeta{}, dverrors.NewIngestError(dverrors.ErrorTypeMetadataUnavailable, "probe", err).WithFile(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.FileMeta{}, dverrors.NewIngestError(dverrors.ErrorTypeMetadataUnavailable, "probe", err).WithFile(normalized)
	}
	if info.IsDir() {
		return types.FileMeta{}, dverrors.NewIngestError(dverrors.ErrorTypeMetadataUnavailable, "probe", os.ErrInvalid).WithFile(normalized)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(normalized), "."))

	return types.FileMeta{
		FilePath:         normalized,
		FileName:         filepath.Base(normalized),
		FileType:         ext,
		FileSize:         info.Size(),
		FileCreatedAt:    fileCreatedAt(info).UTC(),
		FileModifiedTime: info.ModTime().UTC(),
	}, nil
}

// fileCreatedAtFallback returns mtime when the platform exposes no
// birth-time or ctime information, so FileCreatedAt is always populated
// (spec.md §9 open question: best-effort birth time, ctime fallback).
func fileCreatedAtFallback(info os.FileInfo) time.Time {
	return info.ModTime()
}

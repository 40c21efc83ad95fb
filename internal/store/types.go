// Package store implements the Document Store (C6) and Ingest State
// Store (C7) from spec.md §4.6–§4.7 on top of modernc.org/sqlite, using
// its FTS5 trigram tokenizer for full-text search over converted
// Markdown content.
package store

import (
	"time"

	"github.com/standardbeagle/docvault/internal/types"
)

// Document is one row of the document table (spec.md §3's Document
// entity): the probed file plus whatever content the Converter
// Registry produced for it.
type Document struct {
	ID                 int64
	FilePath           string // normalized, unique
	FileName           string
	FileType           string
	FileSize           int64
	FileCreatedAt      time.Time
	FileModifiedTime   time.Time
	Content            string
	ConversionType     types.ConversionType
	ConversionProvider string
	Status             types.DocumentStatus
	ErrorMessage       string
	Source             string // provenance label, e.g. "local_fs" or a downloads subfolder
	SourceURL          string // optional origin URL, read from a sidecar
	IngestedAt         time.Time
	UpdatedAt          time.Time
}

// Page requests one page of a paginated listing (spec.md §4.6
// list_orphans).
type Page struct {
	Limit  int
	Offset int
}

// IngestState is the single-row-per-(source, scope) cursor the
// Ingestion Coordinator resumes from (spec.md §3's IngestState entity,
// §4.7). Identity is the (Source, ScopeKey) pair; for local filesystem
// ingestion ScopeKey is the normalized absolute folder path.
type IngestState struct {
	Source           string
	ScopeKey         string
	LastStartedAt    time.Time
	LastEndedAt      time.Time
	LastErrorMessage string
	CursorUpdatedAt  time.Time // watermark: floor for file_modified_time on the next default run
	TotalFiles       int64
	Processed        int64
	Skipped          int64
	Errors           int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

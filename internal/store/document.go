package store

import (
	"database/sql"
	"time"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// DocumentStore implements C6 (spec.md §4.6): idempotent upserts keyed
// on normalized path, status transitions, and orphan/search listings.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore wraps an already-opened database handle.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// LookupByPath returns the document stored at normalizedPath, if any.
func (s *DocumentStore) LookupByPath(normalizedPath string) (*Document, error) {
	row := s.db.QueryRow(`
		SELECT id, file_path, file_name, file_type, file_size, file_created_at,
		       file_modified_time, content, conversion_type, conversion_provider,
		       status, error_message, source, source_url, ingested_at, updated_at
		FROM document WHERE file_path = ?`, normalizedPath)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "lookup_by_path", err).WithFile(normalizedPath)
	}
	return doc, nil
}

// Upsert inserts or replaces the document at doc.FilePath. It is the
// single idempotent write every successful or failed conversion goes
// through (spec.md §3 invariant (b): "upsert on normalized path is the
// only write path").
func (s *DocumentStore) Upsert(doc *Document) error {
	now := time.Now().UTC()
	doc.UpdatedAt = now
	if doc.Status == types.StatusCompleted && doc.IngestedAt.IsZero() {
		doc.IngestedAt = now
	}

	_, err := s.db.Exec(`
		INSERT INTO document (
			file_path, file_name, file_type, file_size, file_created_at,
			file_modified_time, content, conversion_type, conversion_provider,
			status, error_message, source, source_url, ingested_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			file_name = excluded.file_name,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			file_created_at = excluded.file_created_at,
			file_modified_time = excluded.file_modified_time,
			content = excluded.content,
			conversion_type = excluded.conversion_type,
			conversion_provider = excluded.conversion_provider,
			status = excluded.status,
			error_message = excluded.error_message,
			source = excluded.source,
			source_url = excluded.source_url,
			ingested_at = CASE WHEN excluded.status = 'completed' THEN excluded.ingested_at ELSE document.ingested_at END,
			updated_at = excluded.updated_at
	`, doc.FilePath, doc.FileName, doc.FileType, doc.FileSize, doc.FileCreatedAt,
		doc.FileModifiedTime, doc.Content, int(doc.ConversionType), doc.ConversionProvider,
		string(doc.Status), doc.ErrorMessage, doc.Source, doc.SourceURL, nullTime(doc.IngestedAt), doc.UpdatedAt)

	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "upsert", err).WithFile(doc.FilePath)
	}
	return nil
}

// MarkFailed records a failed conversion attempt without discarding
// the document's row, so RetryDocument has something to retry.
func (s *DocumentStore) MarkFailed(normalizedPath string, ingestErr error) error {
	_, err := s.db.Exec(`
		UPDATE document SET status = 'failed', error_message = ?, updated_at = ?
		WHERE file_path = ?`, ingestErr.Error(), time.Now().UTC(), normalizedPath)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "mark_failed", err).WithFile(normalizedPath)
	}
	return nil
}

// MarkCompleted transitions a document to completed with its content.
func (s *DocumentStore) MarkCompleted(normalizedPath, content string, convType types.ConversionType, provider string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE document SET status = 'completed', content = ?, conversion_type = ?,
			conversion_provider = ?, error_message = '', ingested_at = ?, updated_at = ?
		WHERE file_path = ?`, content, int(convType), provider, now, now, normalizedPath)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "mark_completed", err).WithFile(normalizedPath)
	}
	return nil
}

// BulkDelete removes every document whose path is in paths in one
// transaction and returns the number of rows removed.
func (s *DocumentStore) BulkDelete(paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, dverrors.NewIngestError(dverrors.ErrorTypeStore, "bulk_delete", err)
	}
	defer tx.Rollback()

	var total int64
	stmt, err := tx.Prepare(`DELETE FROM document WHERE file_path = ?`)
	if err != nil {
		return 0, dverrors.NewIngestError(dverrors.ErrorTypeStore, "bulk_delete", err)
	}
	defer stmt.Close()

	for _, p := range paths {
		res, err := stmt.Exec(p)
		if err != nil {
			return total, dverrors.NewIngestError(dverrors.ErrorTypeStore, "bulk_delete", err).WithFile(p)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return total, dverrors.NewIngestError(dverrors.ErrorTypeStore, "bulk_delete", err)
	}
	return total, nil
}

// DistinctFileTypes lists every file_type currently stored, used to
// populate a folder-browsing UI's filter options.
func (s *DocumentStore) DistinctFileTypes() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT file_type FROM document ORDER BY file_type`)
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "distinct_file_types", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ft string
		if err := rows.Scan(&ft); err != nil {
			return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "distinct_file_types", err)
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

// ListOrphans returns documents whose file_path is no longer under
// folder matching fileType/keyword filters, paginated (spec.md §6
// list_orphans: files the store still has a row for, but whose source
// is gone or has moved — not documents that merely failed to convert).
func (s *DocumentStore) ListOrphans(folder, fileType, keyword string, page Page) ([]*Document, error) {
	query := `SELECT id, file_path, file_name, file_type, file_size, file_created_at,
		file_modified_time, content, conversion_type, conversion_provider,
		status, error_message, source, source_url, ingested_at, updated_at
		FROM document WHERE 1 = 1`
	var args []any

	if folder != "" {
		query += ` AND file_path NOT LIKE ?`
		args = append(args, folder+"%")
	}
	if fileType != "" {
		query += ` AND file_type = ?`
		args = append(args, fileType)
	}
	if keyword != "" {
		query += ` AND (file_name LIKE ? OR error_message LIKE ?)`
		args = append(args, "%"+keyword+"%", "%"+keyword+"%")
	}

	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, page.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "list_orphans", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "list_orphans", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// ListFailedUnder returns every document with status=failed whose path
// is under folder, with no pagination. The Ingestion Coordinator uses
// this to resurface previously-failed documents on every default
// rescan, since a file_modified_time cursor floor alone would never
// re-offer a file whose mtime hasn't changed since it failed.
func (s *DocumentStore) ListFailedUnder(folder string) ([]*Document, error) {
	rows, err := s.db.Query(`
		SELECT id, file_path, file_name, file_type, file_size, file_created_at,
		       file_modified_time, content, conversion_type, conversion_provider,
		       status, error_message, source, source_url, ingested_at, updated_at
		FROM document WHERE status = 'failed' AND file_path LIKE ?
		ORDER BY file_path`, folder+"%")
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "list_failed_under", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "list_failed_under", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// SearchContent runs a trigram FTS5 match over converted content,
// returning matching documents ranked by relevance.
func (s *DocumentStore) SearchContent(query string, limit int) ([]*Document, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT d.id, d.file_path, d.file_name, d.file_type, d.file_size, d.file_created_at,
		       d.file_modified_time, d.content, d.conversion_type, d.conversion_provider,
		       d.status, d.error_message, d.source, d.source_url, d.ingested_at, d.updated_at
		FROM document_fts f
		JOIN document d ON d.id = f.rowid
		WHERE f.document_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "search_content", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "search_content", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row *sql.Row) (*Document, error) {
	return scanDocumentRows(row)
}

func scanDocumentRows(row rowScanner) (*Document, error) {
	var doc Document
	var convType int
	var status string
	var ingestedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.FilePath, &doc.FileName, &doc.FileType, &doc.FileSize,
		&doc.FileCreatedAt, &doc.FileModifiedTime, &doc.Content, &convType, &doc.ConversionProvider,
		&status, &doc.ErrorMessage, &doc.Source, &doc.SourceURL, &ingestedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	doc.ConversionType = types.ConversionType(convType)
	doc.Status = types.DocumentStatus(status)
	if ingestedAt.Valid {
		doc.IngestedAt = ingestedAt.Time
	}
	return &doc, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

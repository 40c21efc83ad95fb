package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema creates the document table, its FTS5 trigram shadow index,
// and the ingest_state table. FTS5's trigram tokenizer gives substring
// search over converted content without a separate indexing pipeline
// (spec.md §4.6, full-text search over Markdown content).
const schema = `
CREATE TABLE IF NOT EXISTS document (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path            TEXT NOT NULL UNIQUE,
	file_name            TEXT NOT NULL,
	file_type            TEXT NOT NULL,
	file_size            INTEGER NOT NULL,
	file_created_at      TIMESTAMP NOT NULL,
	file_modified_time   TIMESTAMP NOT NULL,
	content              TEXT NOT NULL DEFAULT '',
	conversion_type      INTEGER NOT NULL DEFAULT 0,
	conversion_provider  TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'pending',
	error_message        TEXT NOT NULL DEFAULT '',
	source               TEXT NOT NULL DEFAULT '',
	source_url           TEXT NOT NULL DEFAULT '',
	ingested_at          TIMESTAMP,
	updated_at           TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_status ON document(status);
CREATE INDEX IF NOT EXISTS idx_document_file_type ON document(file_type);

CREATE VIRTUAL TABLE IF NOT EXISTS document_fts USING fts5(
	content,
	content='document',
	content_rowid='id',
	tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS document_ai AFTER INSERT ON document BEGIN
	INSERT INTO document_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS document_ad AFTER DELETE ON document BEGIN
	INSERT INTO document_fts(document_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;

CREATE TRIGGER IF NOT EXISTS document_au AFTER UPDATE ON document BEGIN
	INSERT INTO document_fts(document_fts, rowid, content) VALUES ('delete', old.id, old.content);
	INSERT INTO document_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TABLE IF NOT EXISTS ingest_state (
	source              TEXT NOT NULL,
	scope_key           TEXT NOT NULL,
	last_started_at     TIMESTAMP,
	last_ended_at       TIMESTAMP,
	last_error_message  TEXT NOT NULL DEFAULT '',
	cursor_updated_at   TIMESTAMP,
	total_files         INTEGER NOT NULL DEFAULT 0,
	processed           INTEGER NOT NULL DEFAULT 0,
	skipped             INTEGER NOT NULL DEFAULT 0,
	errors              INTEGER NOT NULL DEFAULT 0,
	created_at          TIMESTAMP NOT NULL,
	updated_at          TIMESTAMP NOT NULL,
	PRIMARY KEY (source, scope_key)
);
`

// Open opens (creating if necessary) the sqlite database at path and
// applies the schema. A single *sql.DB is safe for concurrent use by
// every worker in the coordinator's pool; sqlite itself serializes
// writes.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1) // modernc.org/sqlite recommends single-writer access per connection pool

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

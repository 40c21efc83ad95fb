package store

import (
	"database/sql"
	"time"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
)

// IngestStateStore implements C7 (spec.md §4.7): the one-row-per-scope
// cursor an interrupted ingestion resumes from, keyed by the (source,
// scope_key) pair spec.md §3 defines as IngestState's identity.
type IngestStateStore struct {
	db *sql.DB
}

// NewIngestStateStore wraps an already-opened database handle.
func NewIngestStateStore(db *sql.DB) *IngestStateStore {
	return &IngestStateStore{db: db}
}

// GetOrCreate returns the IngestState row for (source, scopeKey),
// creating a fresh one (all counters zero, no cursor) if none exists
// yet.
func (s *IngestStateStore) GetOrCreate(source, scopeKey string) (*IngestState, error) {
	state, err := s.get(source, scopeKey)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	now := time.Now().UTC()
	state = &IngestState{Source: source, ScopeKey: scopeKey, CreatedAt: now, UpdatedAt: now}
	_, err = s.db.Exec(`
		INSERT INTO ingest_state (source, scope_key, last_started_at, last_ended_at,
			last_error_message, cursor_updated_at, total_files, processed, skipped, errors,
			created_at, updated_at)
		VALUES (?, ?, NULL, NULL, '', NULL, 0, 0, 0, 0, ?, ?)`, source, scopeKey, now, now)
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "get_or_create", err).WithFile(scopeKey)
	}
	return state, nil
}

func (s *IngestStateStore) get(source, scopeKey string) (*IngestState, error) {
	row := s.db.QueryRow(`
		SELECT source, scope_key, last_started_at, last_ended_at, last_error_message,
		       cursor_updated_at, total_files, processed, skipped, errors, created_at, updated_at
		FROM ingest_state WHERE source = ? AND scope_key = ?`, source, scopeKey)

	var state IngestState
	var lastStarted, lastEnded, cursorUpdated sql.NullTime
	err := row.Scan(&state.Source, &state.ScopeKey, &lastStarted, &lastEnded, &state.LastErrorMessage,
		&cursorUpdated, &state.TotalFiles, &state.Processed, &state.Skipped, &state.Errors,
		&state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dverrors.NewIngestError(dverrors.ErrorTypeStore, "get_ingest_state", err).WithFile(scopeKey)
	}
	if lastStarted.Valid {
		state.LastStartedAt = lastStarted.Time
	}
	if lastEnded.Valid {
		state.LastEndedAt = lastEnded.Time
	}
	if cursorUpdated.Valid {
		state.CursorUpdatedAt = cursorUpdated.Time
	}
	return &state, nil
}

// MarkStarted records the start of a new run: last_started_at = now,
// last_error_message cleared (spec.md §4.9 step 2).
func (s *IngestStateStore) MarkStarted(source, scopeKey string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE ingest_state SET last_started_at = ?, last_error_message = '', updated_at = ?
		WHERE source = ? AND scope_key = ?`, now, now, source, scopeKey)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "mark_started", err).WithFile(scopeKey)
	}
	return nil
}

// SetTotalFiles persists the candidate count discovered by the scan,
// emitted alongside scan_complete (spec.md §4.9 step 3).
func (s *IngestStateStore) SetTotalFiles(source, scopeKey string, total int64) error {
	_, err := s.db.Exec(`
		UPDATE ingest_state SET total_files = ?, updated_at = ? WHERE source = ? AND scope_key = ?`,
		total, time.Now().UTC(), source, scopeKey)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "set_total_files", err).WithFile(scopeKey)
	}
	return nil
}

// Counters adds the given deltas to the stored counters atomically.
type Counters struct {
	Processed, Skipped, Errors int64
}

// UpdateCounters increments (source, scopeKey)'s counters by delta.
// Called as each file resolves so progress is visible to a
// concurrently-reading caller without waiting for the whole ingestion
// to finish.
func (s *IngestStateStore) UpdateCounters(source, scopeKey string, delta Counters) error {
	_, err := s.db.Exec(`
		UPDATE ingest_state SET
			processed = processed + ?,
			skipped = skipped + ?,
			errors = errors + ?,
			updated_at = ?
		WHERE source = ? AND scope_key = ?`, delta.Processed, delta.Skipped, delta.Errors, time.Now().UTC(), source, scopeKey)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "update_counters", err).WithFile(scopeKey)
	}
	return nil
}

// AdvanceCursor sets cursor_updated_at to to, the watermark used as a
// file_modified_time floor on the next default run (spec.md §4.7, §4.9
// step 5). Callers must only advance the cursor on a run that finishes
// without cancellation or a critical error (step 6, step 7).
func (s *IngestStateStore) AdvanceCursor(source, scopeKey string, to time.Time) error {
	_, err := s.db.Exec(`UPDATE ingest_state SET cursor_updated_at = ?, updated_at = ? WHERE source = ? AND scope_key = ?`,
		to, time.Now().UTC(), source, scopeKey)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "advance_cursor", err).WithFile(scopeKey)
	}
	return nil
}

// Finish records the end of a run regardless of outcome: last_ended_at
// = now, last_error_message = errMessage ("" on success or
// cancellation) (spec.md §4.9 step 8, the finally block).
func (s *IngestStateStore) Finish(source, scopeKey, errMessage string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE ingest_state SET last_ended_at = ?, last_error_message = ?, updated_at = ?
		WHERE source = ? AND scope_key = ?`, now, errMessage, now, source, scopeKey)
	if err != nil {
		return dverrors.NewIngestError(dverrors.ErrorTypeStore, "finish", err).WithFile(scopeKey)
	}
	return nil
}

// Package ingest implements the Ingestion Coordinator (C9, spec.md
// §4.9): the state machine driving scan → probe → dedup → convert →
// upsert → emit → advance-cursor for one session.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/docvault/internal/config"
	"github.com/standardbeagle/docvault/internal/convert"
	"github.com/standardbeagle/docvault/internal/debug"
	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/events"
	"github.com/standardbeagle/docvault/internal/scan"
	"github.com/standardbeagle/docvault/internal/session"
	"github.com/standardbeagle/docvault/internal/store"
	"github.com/standardbeagle/docvault/internal/types"
)

// sourceLocalFS is the IngestState/Document source label for a run
// rooted at a local filesystem folder (spec.md §3's example value),
// used whenever DeriveSource can't place a file under a named subfolder.
const sourceLocalFS = "local_fs"

// Coordinator owns every long-lived collaborator an ingestion session
// needs: the converter registry, the two stores, the session registry,
// and the event bus.
type Coordinator struct {
	cfg      *config.Config
	registry *convert.Registry
	docs     *store.DocumentStore
	state    *store.IngestStateStore
	sessions *session.Registry
	bus      *events.Bus
}

// NewCoordinator wires the collaborators together. cfg's Runtime
// section controls worker pool size and session bookkeeping.
func NewCoordinator(cfg *config.Config, registry *convert.Registry, docs *store.DocumentStore, state *store.IngestStateStore, sessions *session.Registry, bus *events.Bus) *Coordinator {
	return &Coordinator{cfg: cfg, registry: registry, docs: docs, state: state, sessions: sessions, bus: bus}
}

// Start begins a new ingestion session over root and returns
// immediately; the walk itself runs in the background. dateFrom and
// dateTo are the optional explicit date bounds from start_ingest
// (spec.md §6); a zero dateFrom falls back to the scope's persisted
// cursor (spec.md §4.9 step 1). Progress is observable via the event
// bus (events.Bus.Subscribe) and the session registry
// (session.Registry.GetDebug).
func (c *Coordinator) Start(ctx context.Context, root string, dateFrom, dateTo time.Time) *session.Session {
	sess := c.sessions.StartSession(root)
	go c.run(ctx, sess, dateFrom, dateTo)
	return sess
}

// runCounters accumulates one run's outcome for the final summary;
// fields are updated from multiple workers via atomic ops.
type runCounters struct {
	processed int64
	skipped   int64
	errored   int64
}

func (rc *runCounters) toStoreCounters() store.Counters {
	return store.Counters{
		Processed: atomic.LoadInt64(&rc.processed),
		Skipped:   atomic.LoadInt64(&rc.skipped),
		Errors:    atomic.LoadInt64(&rc.errored),
	}
}

func (rc *runCounters) summary(total int64) *events.Summary {
	sc := rc.toStoreCounters()
	return &events.Summary{
		TotalFiles:     total,
		ProcessedFiles: sc.Processed,
		SkippedFiles:   sc.Skipped,
		ErrorFiles:     sc.Errors,
	}
}

func (c *Coordinator) run(ctx context.Context, sess *session.Session, dateFrom, dateTo time.Time) {
	debug.LogIngest("session %s starting for root %s", sess.ID, sess.Root)

	scopeKey := sess.Root
	runStart := time.Now().UTC()
	status := session.StatusCompleted
	var runErr error

	ingestState, err := c.state.GetOrCreate(sourceLocalFS, scopeKey)
	if err != nil {
		debug.LogIngest("session %s: failed to load ingest state: %v", sess.ID, err)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelCritical, Stage: events.StageCriticalError, Message: err.Error()})
		c.sessions.EndSession(sess.ID, session.StatusFailed)
		return
	}

	defer func() {
		errMsg := ""
		if runErr != nil {
			errMsg = runErr.Error()
		}
		if ferr := c.state.Finish(sourceLocalFS, scopeKey, errMsg); ferr != nil {
			debug.LogStore("session %s: finish ingest state failed: %v", sess.ID, ferr)
		}
		c.sessions.EndSession(sess.ID, status)
	}()
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic: %v", r)
			status = session.StatusFailed
			c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelCritical, Stage: events.StageCriticalError, Message: runErr.Error()})
		}
	}()

	if err := c.state.MarkStarted(sourceLocalFS, scopeKey); err != nil {
		debug.LogStore("session %s: mark started failed: %v", sess.ID, err)
	}

	effectiveFrom := dateFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = ingestState.CursorUpdatedAt
	}

	include := c.cfg.Include
	if len(include) == 0 {
		include = c.registry.KnownExtensions()
	}

	exclude := c.cfg.Exclude
	if c.cfg.Index.RespectGitignore {
		gp := config.NewGitignoreParser()
		if gerr := gp.LoadGitignore(sess.Root); gerr == nil {
			exclude = append(append([]string{}, exclude...), gp.GetExclusionPatterns()...)
		} else {
			debug.LogIngest("session %s: load .gitignore failed: %v", sess.ID, gerr)
		}
	}

	c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageScanStart})

	candidates, err := scan.Scan(scan.Options{
		Root:           sess.Root,
		Recursive:      c.cfg.Index.Recursive,
		FollowSymlinks: c.cfg.Index.FollowSymlinks,
		Include:        include,
		Exclude:        exclude,
		ModifiedAfter:  effectiveFrom,
		ModifiedBefore: dateTo,
	})
	if err != nil {
		debug.LogIngest("session %s: scan failed: %v", sess.ID, err)
		runErr = err
		status = session.StatusFailed
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelCritical, Stage: events.StageCriticalError, Message: err.Error()})
		return
	}

	// A file_modified_time floor alone would never re-offer a failed
	// document whose mtime hasn't changed since it failed, so every
	// already-failed document under root is merged back in regardless
	// of the floor (spec.md §8 open question on retry-on-rescan,
	// resolved in DESIGN.md: a failed document is retried on every
	// default run, whatever its mtime, until it converts successfully).
	seen := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		seen[cand.Path] = true
	}
	failedDocs, ferr := c.docs.ListFailedUnder(sess.Root)
	if ferr != nil {
		debug.LogStore("session %s: list failed under root failed: %v", sess.ID, ferr)
	}
	for _, doc := range failedDocs {
		if !seen[doc.FilePath] {
			candidates = append(candidates, scan.Candidate{Path: doc.FilePath})
			seen[doc.FilePath] = true
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

	total := int64(len(candidates))
	c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageScanComplete, TotalFiles: total})
	if serr := c.state.SetTotalFiles(sourceLocalFS, scopeKey, total); serr != nil {
		debug.LogStore("session %s: set total files failed: %v", sess.ID, serr)
	}

	pool := c.cfg.Runtime.WorkerPoolSize
	if pool <= 0 {
		pool = 4
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(pool)

	counters := &runCounters{}

	for i, cand := range candidates {
		if sess.IsCancelled() {
			status = session.StatusCancelled
			break
		}

		i, cand := i, cand
		group.Go(func() error {
			c.processOne(groupCtx, sess, cand, i, int(total), counters)
			return nil
		})
	}
	_ = group.Wait()

	if uerr := c.state.UpdateCounters(sourceLocalFS, scopeKey, counters.toStoreCounters()); uerr != nil {
		debug.LogStore("session %s: update counters failed: %v", sess.ID, uerr)
	}

	summary := counters.summary(total)

	if status == session.StatusCancelled {
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelWarning, Stage: events.StageCancelled})
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageDone, Summary: summary})
		return
	}

	// Cursor advances only on a run that finishes without cancellation
	// or a critical error (spec.md §4.9 steps 5-7).
	if aerr := c.state.AdvanceCursor(sourceLocalFS, scopeKey, runStart); aerr != nil {
		debug.LogStore("session %s: advance cursor failed: %v", sess.ID, aerr)
	}
	c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageDone, Summary: summary})
}

// processOne runs one candidate through probe → dedup → convert →
// upsert → emit, never letting a single file's failure abort the walk
// (spec.md §4.9 invariant: "one bad file must never stop the session").
func (c *Coordinator) processOne(ctx context.Context, sess *session.Session, cand scan.Candidate, index, total int, counters *runCounters) {
	meta, err := scan.ProbeFile(cand.Path)
	if err != nil {
		atomic.AddInt64(&counters.skipped, 1)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelWarning, Stage: events.StageFileSkip, CurrentFile: cand.Path, Reason: events.ReasonMetadata, Message: err.Error()})
		return
	}

	normalized, err := scan.NormalizePath(cand.Path)
	if err != nil {
		atomic.AddInt64(&counters.skipped, 1)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelWarning, Stage: events.StageFileSkip, CurrentFile: cand.Path, Reason: events.ReasonMetadata, Message: err.Error()})
		return
	}

	progress := 0
	if total > 0 {
		progress = ((index + 1) * 100) / total
	}
	c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageFileProcessing, CurrentFile: normalized, Progress: progress})

	existing, err := c.docs.LookupByPath(normalized)
	if err == nil && existing != nil && existing.Status == types.StatusCompleted &&
		existing.FileModifiedTime.Equal(meta.FileModifiedTime) && existing.FileSize == meta.FileSize {
		// Unchanged since the last successful ingest: skip reconversion
		// (spec.md §3 invariant (c), idempotent re-scan).
		atomic.AddInt64(&counters.skipped, 1)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageFileSkip, CurrentFile: normalized, Reason: events.ReasonUnchanged})
		return
	}

	source := DeriveSource(normalized, sess.Root)
	if source == "" {
		source = sourceLocalFS
	}
	sourceURL := ""
	if sc, ok := scan.ReadSidecar(cand.Path); ok {
		sourceURL = sc.SourceURL
	}

	doc := &store.Document{
		FilePath: normalized, FileName: meta.FileName, FileType: meta.FileType,
		FileSize: meta.FileSize, FileCreatedAt: meta.FileCreatedAt, FileModifiedTime: meta.FileModifiedTime,
		Status: types.StatusPending, Source: source, SourceURL: sourceURL,
	}
	if err := c.docs.Upsert(doc); err != nil {
		debug.LogStore("upsert pending failed for %s: %v", normalized, err)
	}

	result := c.registry.Dispatch(ctx, meta)

	if !result.Success {
		_ = c.docs.MarkFailed(normalized, result.Err)
		atomic.AddInt64(&counters.errored, 1)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelError, Stage: events.StageFileError, CurrentFile: normalized, Message: errMessage(result.Err)})
		return
	}

	if err := c.docs.MarkCompleted(normalized, result.Content, result.Tag, result.Provider); err != nil {
		atomic.AddInt64(&counters.errored, 1)
		c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelError, Stage: events.StageFileError, CurrentFile: normalized, Message: err.Error()})
		return
	}

	atomic.AddInt64(&counters.processed, 1)
	c.bus.Publish(events.Event{SessionID: sess.ID, Level: events.LevelInfo, Stage: events.StageFileSuccess, CurrentFile: normalized})
}

// RetryDocument reprobes and reconverts a single previously-failed
// document by its normalized path. It rejects any document that isn't
// currently failed, so retry can't be used to force-reconvert an
// already-completed or in-flight document (spec.md §6 retry_document).
func (c *Coordinator) RetryDocument(ctx context.Context, normalizedPath string) error {
	doc, err := c.docs.LookupByPath(normalizedPath)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("retry_document: no document at %s", normalizedPath)
	}
	if doc.Status != types.StatusFailed {
		return fmt.Errorf("retry_document: document %s is not failed (status=%s)", normalizedPath, doc.Status)
	}

	meta, err := scan.ProbeFile(normalizedPath)
	if err != nil {
		return err
	}

	result := c.registry.Dispatch(ctx, meta)
	if !result.Success {
		if err := c.docs.MarkFailed(normalizedPath, result.Err); err != nil {
			return err
		}
		return result.Err
	}

	return c.docs.MarkCompleted(normalizedPath, result.Content, result.Tag, result.Provider)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	if ie, ok := err.(*dverrors.IngestError); ok {
		return ie.Error()
	}
	return err.Error()
}

// Package session implements the Session Registry (C8, spec.md §4.8):
// cancellable, independently-tracked ingestion runs with a bounded
// grace-period history of recently finished sessions.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a session's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Session tracks one ingestion run's cancellation state and summary.
type Session struct {
	ID        string
	Root      string
	Status    Status
	StartedAt time.Time
	EndedAt   time.Time

	mu        sync.RWMutex
	cancelled bool
}

// RequestCancel flips the cooperative cancel flag; workers observe it
// via IsCancelled at their next checkpoint (spec.md §4.8, §5).
func (s *Session) RequestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// IsCancelled reports whether RequestCancel has been called.
func (s *Session) IsCancelled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancelled
}

func (s *Session) snapshot() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{ID: s.ID, Root: s.Root, Status: s.Status, StartedAt: s.StartedAt, EndedAt: s.EndedAt, cancelled: s.cancelled}
}

// Registry holds every active session plus a bounded history of ended
// ones, so get_debug and session_history remain answerable for a grace
// period after a session ends (spec.md §4.8 grace period).
type Registry struct {
	mu           sync.RWMutex
	active       map[string]*Session
	history      []*Session
	historyCap   int
	graceSeconds int
}

// NewRegistry builds a registry retaining at most historyCap ended
// sessions, each visible for graceSeconds after it ends.
func NewRegistry(historyCap, graceSeconds int) *Registry {
	if historyCap <= 0 {
		historyCap = 1000
	}
	if graceSeconds <= 0 {
		graceSeconds = 300
	}
	return &Registry{
		active:       make(map[string]*Session),
		historyCap:   historyCap,
		graceSeconds: graceSeconds,
	}
}

// StartSession creates and registers a new running session for root.
func (r *Registry) StartSession(root string) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Root:      root,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.active[sess.ID] = sess
	r.mu.Unlock()

	return sess
}

// RequestCancel looks up id among active sessions and cancels it.
// Returns false if id is not an active session (spec.md §4.8: cancel
// on an unknown or already-ended session is a no-op, not an error).
func (r *Registry) RequestCancel(id string) bool {
	r.mu.RLock()
	sess, ok := r.active[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	sess.RequestCancel()
	return true
}

// IsCancelled reports id's cancellation state; an unknown id is never
// cancelled.
func (r *Registry) IsCancelled(id string) bool {
	r.mu.RLock()
	sess, ok := r.active[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return sess.IsCancelled()
}

// ActiveIDs lists every currently-running session ID.
func (r *Registry) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.active))
	for id := range r.active {
		out = append(out, id)
	}
	return out
}

// GetDebug returns a point-in-time snapshot of session id, whether
// still active or within its grace-period history.
func (r *Registry) GetDebug(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sess, ok := r.active[id]; ok {
		return sess.snapshot(), true
	}
	for _, sess := range r.history {
		if sess.ID == id {
			return sess.snapshot(), true
		}
	}
	return nil, false
}

// EndSession moves id from active to the bounded history with a final
// status, then drops every history entry past its grace period and
// trims the oldest entries beyond capacity.
func (r *Registry) EndSession(id string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.active[id]
	if !ok {
		return
	}
	delete(r.active, id)

	sess.mu.Lock()
	sess.Status = status
	sess.EndedAt = time.Now().UTC()
	sess.mu.Unlock()

	r.history = append(r.history, sess)
	r.evictExpired()
}

// evictExpired drops history entries past their grace period, then
// trims to historyCap if still over. Caller must hold r.mu.
func (r *Registry) evictExpired() {
	cutoff := time.Now().UTC().Add(-time.Duration(r.graceSeconds) * time.Second)

	kept := r.history[:0:0]
	for _, sess := range r.history {
		sess.mu.RLock()
		ended := sess.EndedAt
		sess.mu.RUnlock()
		if ended.After(cutoff) {
			kept = append(kept, sess)
		}
	}
	if len(kept) > r.historyCap {
		kept = kept[len(kept)-r.historyCap:]
	}
	r.history = kept
}

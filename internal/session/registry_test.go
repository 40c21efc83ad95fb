package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionIsActiveAndRunning(t *testing.T) {
	r := NewRegistry(10, 300)
	sess := r.StartSession("/root/docs")

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, StatusRunning, sess.Status)
	assert.Contains(t, r.ActiveIDs(), sess.ID)
}

func TestRequestCancelKnownSession(t *testing.T) {
	r := NewRegistry(10, 300)
	sess := r.StartSession("/root/docs")

	assert.True(t, r.RequestCancel(sess.ID))
	assert.True(t, r.IsCancelled(sess.ID))
	assert.True(t, sess.IsCancelled())
}

func TestRequestCancelUnknownSessionIsNoop(t *testing.T) {
	r := NewRegistry(10, 300)
	assert.False(t, r.RequestCancel("does-not-exist"))
}

func TestIsCancelledUnknownSessionFalse(t *testing.T) {
	r := NewRegistry(10, 300)
	assert.False(t, r.IsCancelled("does-not-exist"))
}

func TestEndSessionMovesToHistory(t *testing.T) {
	r := NewRegistry(10, 300)
	sess := r.StartSession("/root/docs")

	r.EndSession(sess.ID, StatusCompleted)

	assert.NotContains(t, r.ActiveIDs(), sess.ID)
	snap, ok := r.GetDebug(sess.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.False(t, snap.EndedAt.IsZero())
}

func TestGetDebugUnknownSession(t *testing.T) {
	r := NewRegistry(10, 300)
	_, ok := r.GetDebug("nope")
	assert.False(t, ok)
}

func TestEvictExpiredDropsPastGracePeriod(t *testing.T) {
	r := NewRegistry(10, 0) // graceSeconds <= 0 normalizes to 300 in NewRegistry
	r.graceSeconds = 0      // force an immediate cutoff for this test
	sess := r.StartSession("/root/docs")
	r.EndSession(sess.ID, StatusCompleted)

	time.Sleep(5 * time.Millisecond)
	r.mu.Lock()
	r.evictExpired()
	r.mu.Unlock()

	_, ok := r.GetDebug(sess.ID)
	assert.False(t, ok)
}

func TestEvictExpiredTrimsToCapacity(t *testing.T) {
	r := NewRegistry(2, 300)
	var ids []string
	for i := 0; i < 5; i++ {
		sess := r.StartSession("/root/docs")
		r.EndSession(sess.ID, StatusCompleted)
		ids = append(ids, sess.ID)
	}

	r.mu.RLock()
	historyLen := len(r.history)
	r.mu.RUnlock()
	assert.LessOrEqual(t, historyLen, 2)

	// The most recently ended sessions must survive the trim.
	_, ok := r.GetDebug(ids[len(ids)-1])
	assert.True(t, ok)
}

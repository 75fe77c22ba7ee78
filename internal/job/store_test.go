package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(StoreConfig{
		MaxJobs:         10,
		JobTTL:          time.Hour,
		TerminalJobTTL:  10 * time.Minute,
		CleanupInterval: time.Hour,
		Estimates:       DefaultEstimates,
	}, 10)
}

func TestSubmitThenSnapshotRoundTrips(t *testing.T) {
	s := newTestStore()
	id, err := s.Submit("general_chat", Request{Message: "hello"}, "sess-1")
	require.NoError(t, err)

	view, ok := s.Snapshot(id)
	require.True(t, ok)
	assert.Equal(t, Pending, view.Status)
	assert.Equal(t, 0, view.Progress)

	j, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "hello", j.Request.Message)
	assert.Equal(t, "sess-1", j.SessionID)
}

func TestStatusLifecycleMonotonic(t *testing.T) {
	s := newTestStore()
	id, _ := s.Submit("general_chat", Request{Message: "hi"}, "")

	require.NoError(t, s.UpdateProgress(id, 0, Processing))
	view, _ := s.Snapshot(id)
	assert.Equal(t, Processing, view.Status)
	require.NotNil(t, view.StartedAt)

	require.NoError(t, s.SetResult(id, Result{Content: "done", Success: true}))
	view, _ = s.Snapshot(id)
	assert.Equal(t, Completed, view.Status)
	assert.Equal(t, 100, view.Progress)
	require.NotNil(t, view.CompletedAt)

	// terminal job: further mutation attempts are no-ops
	require.NoError(t, s.UpdateProgress(id, 5, Processing))
	view, _ = s.Snapshot(id)
	assert.Equal(t, Completed, view.Status)
	assert.Equal(t, 100, view.Progress)
}

func TestCancelIdempotent(t *testing.T) {
	s := newTestStore()
	id, _ := s.Submit("general_chat", Request{Message: "hi"}, "")

	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))

	view, _ := s.Snapshot(id)
	assert.Equal(t, Cancelled, view.Status)
	require.NotNil(t, view.CompletedAt)
}

func TestCancelOfUnknownJobReturnsFalse(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.Cancel("does-not-exist"))
}

func TestProgressMonotonicNonDecreasing(t *testing.T) {
	s := newTestStore()
	id, _ := s.Submit("general_chat", Request{Message: "hi"}, "")
	require.NoError(t, s.UpdateProgress(id, 10, Processing))
	require.NoError(t, s.UpdateProgress(id, 5, ""))
	view, _ := s.Snapshot(id)
	assert.Equal(t, 10, view.Progress)
}

func TestEvictionNeverDeletesLiveJobs(t *testing.T) {
	cfg := StoreConfig{
		MaxJobs:         1000,
		JobTTL:          time.Nanosecond,
		TerminalJobTTL:  time.Nanosecond,
		CleanupInterval: 0,
		Estimates:       DefaultEstimates,
	}
	s := NewStore(cfg, 10)
	id, _ := s.Submit("general_chat", Request{Message: "hi"}, "")
	require.NoError(t, s.UpdateProgress(id, 0, Processing))

	time.Sleep(time.Millisecond)
	s.mu.Lock()
	s.cleanupLocked()
	s.mu.Unlock()

	_, ok := s.Get(id)
	assert.True(t, ok, "non-terminal job must survive eviction regardless of age")
}

func TestListMostRecentFirst(t *testing.T) {
	s := newTestStore()
	id1, _ := s.Submit("general_chat", Request{Message: "one"}, "")
	time.Sleep(time.Millisecond)
	id2, _ := s.Submit("general_chat", Request{Message: "two"}, "")

	entries := s.List(10, "", "")
	require.Len(t, entries, 2)
	assert.Equal(t, id2, entries[0].ID)
	assert.Equal(t, id1, entries[1].ID)
}

func TestListFiltersBySessionID(t *testing.T) {
	s := newTestStore()
	id1, _ := s.Submit("general_chat", Request{Message: "one"}, "sess-a")
	time.Sleep(time.Millisecond)
	s.Submit("general_chat", Request{Message: "two"}, "sess-b")

	entries := s.List(10, "", "sess-a")
	require.Len(t, entries, 1)
	assert.Equal(t, id1, entries[0].ID)
	assert.Equal(t, "sess-a", entries[0].SessionID)
}

func TestStatsScopesToSessionID(t *testing.T) {
	s := newTestStore()
	s.Submit("general_chat", Request{Message: "one"}, "sess-a")
	s.Submit("general_chat", Request{Message: "two"}, "sess-b")

	all := s.Stats("")
	assert.Equal(t, 2, all.TotalJobs)

	scoped := s.Stats("sess-a")
	assert.Equal(t, 1, scoped.TotalJobs)
	assert.Equal(t, 1, scoped.StatusCounts[Pending])
}

func TestSetResultCarriesSessionIDFromJob(t *testing.T) {
	s := newTestStore()
	id, _ := s.Submit("general_chat", Request{Message: "hi"}, "sess-z")
	require.NoError(t, s.SetResult(id, Result{Content: "done", Success: true}))

	result, ok := s.Result(id)
	require.True(t, ok)
	assert.Equal(t, "sess-z", result.SessionID)
}

func TestEstimateDurationLookupAndDefault(t *testing.T) {
	assert.Equal(t, 240, EstimateDuration(DefaultEstimates, "prior_art_search"))
	assert.Equal(t, DefaultEstimate, EstimateDuration(DefaultEstimates, "unknown_type"))
}

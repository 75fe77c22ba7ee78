package job

import "time"

// Tracker publishes throttled progress updates for a single job,
// scaled between a step's [startPct, endPct) bounds. Writes are
// best-effort and never suspend.
type Tracker struct {
	store    *Store
	jobID    string
	interval time.Duration

	startPct int
	endPct   int
	last     time.Time
}

// NewTracker creates a tracker for jobID with the given minimum write
// interval (default 2s if zero).
func NewTracker(store *Store, jobID string, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Tracker{store: store, jobID: jobID, interval: interval, startPct: 0, endPct: 100}
}

// SetBounds rescopes subsequent Update calls to [start, end).
func (t *Tracker) SetBounds(start, end int) {
	t.startPct = start
	t.endPct = end
}

// Update reports inner progress in [0,100] within the tracker's current
// bounds. It returns false if the job has been cancelled, signalling
// the caller (the workflow executor) to abort.
func (t *Tracker) Update(innerPct int) bool {
	if t.store.IsCancelled(t.jobID) {
		return false
	}
	now := time.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return true
	}
	t.last = now
	pct := t.startPct + (innerPct*(t.endPct-t.startPct))/100
	_ = t.store.UpdateProgress(t.jobID, pct, Processing)
	return true
}

// ProportionalBounds computes the [start, end) bounds for step k
// (1-based) of an N-step plan: step k occupies [100(k-1)/N, 100k/N).
func ProportionalBounds(step, total int) (int, int) {
	if total <= 0 {
		return 0, 100
	}
	start := 100 * (step - 1) / total
	end := 100 * step / total
	return start, end
}

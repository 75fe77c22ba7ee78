package job

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned by store operations addressing an unknown id.
var ErrJobNotFound = fmt.Errorf("job not found")

// StoreConfig configures the eviction and capacity policy.
type StoreConfig struct {
	MaxJobs           int
	JobTTL            time.Duration
	TerminalJobTTL    time.Duration
	CleanupInterval   time.Duration
	Estimates         map[string]int
}

// DefaultStoreConfig matches the recognized-options defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxJobs:         1000,
		JobTTL:          time.Hour,
		TerminalJobTTL:  10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		Estimates:       DefaultEstimates,
	}
}

// Store is the process-wide, concurrency-safe Job collection. A single
// mutex guards the id->Job map and the cleanup bookkeeping; it is never
// held across I/O.
type Store struct {
	cfg StoreConfig

	mu          sync.Mutex
	jobs        map[string]*Job
	order       []string // insertion order, for list()/eviction tie-break
	lastCleanup time.Time
	queue       chan string
}

// NewStore creates an empty Store with a bounded submission queue.
func NewStore(cfg StoreConfig, queueCapacity int) *Store {
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 1000
	}
	if cfg.Estimates == nil {
		cfg.Estimates = DefaultEstimates
	}
	return &Store{
		cfg:         cfg,
		jobs:        make(map[string]*Job),
		lastCleanup: time.Now(),
		queue:       make(chan string, queueCapacity),
	}
}

// Queue exposes the worker's dequeue channel. Only the worker reads
// from it.
func (s *Store) Queue() <-chan string {
	return s.queue
}

// Submit creates a PENDING job, enqueues its id and returns it.
func (s *Store) Submit(jobType string, req Request, sessionID string) (string, error) {
	s.mu.Lock()
	s.cleanupLocked()

	id := uuid.NewString()
	now := time.Now()
	j := &Job{
		ID:                 id,
		Status:             Pending,
		JobType:            jobType,
		Request:            req,
		SessionID:          sessionID,
		CreatedAt:          now,
		Progress:           0,
		EstimatedDurationS: EstimateDuration(s.cfg.Estimates, jobType),
	}
	select {
	case s.queue <- id:
	default:
		s.mu.Unlock()
		return "", fmt.Errorf("job queue is full")
	}
	s.jobs[id] = j
	s.order = append(s.order, id)
	s.mu.Unlock()
	return id, nil
}

// Snapshot returns an immutable view of job id, or false if unknown.
func (s *Store) Snapshot(id string) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return View{}, false
	}
	return j.snapshot(), true
}

// Result returns the assembled result iff the job is COMPLETED.
func (s *Store) Result(id string) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Status != Completed {
		return nil, false
	}
	return j.Result, true
}

// Get returns the live job pointer for worker-internal use. Callers
// outside this package must not retain or mutate it; use Snapshot.
func (s *Store) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// UpdateProgress transitions status (if non-empty and a valid edge) and
// sets the percentage. StartedAt is set exactly once, on the first
// Pending->Processing edge.
func (s *Store) UpdateProgress(id string, pct int, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if j.Status.Terminal() {
		return nil
	}
	if status != "" && status != j.Status {
		validEdge := (j.Status == Pending && (status == Processing || status == Cancelled)) ||
			(j.Status == Processing && status.Terminal())
		if validEdge {
			now := time.Now()
			if status == Processing && j.StartedAt == nil {
				j.StartedAt = &now
			}
			if status.Terminal() {
				j.CompletedAt = &now
			}
			j.Status = status
		}
	}
	if pct > j.Progress {
		j.Progress = pct
	}
	return nil
}

// SetResult transitions the job to COMPLETED. result.SessionID is
// overwritten with the job's own session id, so callers never need to
// thread it through by hand.
func (s *Store) SetResult(id string, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if j.Status.Terminal() {
		return nil
	}
	now := time.Now()
	result.SessionID = j.SessionID
	j.Status = Completed
	j.Progress = 100
	j.Result = &result
	j.CompletedAt = &now
	return nil
}

// SetError transitions the job to FAILED.
func (s *Store) SetError(id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if j.Status.Terminal() {
		return nil
	}
	now := time.Now()
	j.Status = Failed
	j.Error = message
	j.CompletedAt = &now
	return nil
}

// Cancel transitions a non-terminal job to CANCELLED. Idempotent:
// cancelling a terminal (or already-cancelled) job returns false.
func (s *Store) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.Status.Terminal() {
		return false
	}
	now := time.Now()
	j.Status = Cancelled
	j.CompletedAt = &now
	return true
}

// IsCancelled is a cheap cooperative-cancellation check used by the
// worker and the workflow executor.
func (s *Store) IsCancelled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return ok && j.Status == Cancelled
}

// Stats returns store-wide counters. A non-empty sessionID scopes
// TotalJobs and StatusCounts to that session's jobs only.
func (s *Store) Stats(sessionID string) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[Status]int{Pending: 0, Processing: 0, Completed: 0, Failed: 0, Cancelled: 0}
	total := 0
	for _, j := range s.jobs {
		if sessionID != "" && j.SessionID != sessionID {
			continue
		}
		counts[j.Status]++
		total++
	}
	return Stats{
		TotalJobs:    total,
		StatusCounts: counts,
		MaxJobs:      s.cfg.MaxJobs,
		JobTTL:       s.cfg.JobTTL,
		LastCleanup:  s.lastCleanup,
	}
}

// List returns up to limit entries, most-recent-first, optionally
// filtered by status and/or session id.
func (s *Store) List(limit int, statusFilter Status, sessionID string) []ListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]ListEntry, 0, len(s.jobs))
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		if statusFilter != "" && j.Status != statusFilter {
			continue
		}
		if sessionID != "" && j.SessionID != sessionID {
			continue
		}
		entries = append(entries, ListEntry{
			ID:        j.ID,
			Status:    j.Status,
			CreatedAt: j.CreatedAt,
			Progress:  j.Progress,
			SessionID: j.SessionID,
		})
	}
	sort.SliceStable(entries, func(i, k int) bool {
		return entries[i].CreatedAt.After(entries[k].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// cleanupLocked runs the eviction pass; caller must hold s.mu.
// Triggered opportunistically, at most once per CleanupInterval.
func (s *Store) cleanupLocked() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cfg.CleanupInterval {
		return
	}
	s.lastCleanup = now

	var kept []string
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if !ok {
			continue
		}
		age := now.Sub(j.CreatedAt)
		if j.Status.Terminal() && age > s.cfg.JobTTL {
			delete(s.jobs, id)
			continue
		}
		if j.Status.Terminal() && age > s.cfg.TerminalJobTTL {
			delete(s.jobs, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept

	if len(s.jobs) > s.cfg.MaxJobs {
		s.evictOldestTerminalLocked(len(s.jobs) - s.cfg.MaxJobs)
	}
}

// evictOldestTerminalLocked removes up to n terminal jobs, oldest
// created_at first. Non-terminal jobs are never removed by this path.
func (s *Store) evictOldestTerminalLocked(n int) {
	type agedID struct {
		id  string
		at  time.Time
	}
	var terminal []agedID
	for _, id := range s.order {
		j, ok := s.jobs[id]
		if ok && j.Status.Terminal() {
			terminal = append(terminal, agedID{id, j.CreatedAt})
		}
	}
	sort.Slice(terminal, func(i, k int) bool { return terminal[i].at.Before(terminal[k].at) })

	removed := make(map[string]bool)
	for i := 0; i < n && i < len(terminal); i++ {
		delete(s.jobs, terminal[i].id)
		removed[terminal[i].id] = true
	}
	if len(removed) == 0 {
		return
	}
	kept := s.order[:0:0]
	for _, id := range s.order {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

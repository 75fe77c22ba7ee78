// Package job implements the asynchronous job queue: submission, the
// in-memory store, the worker loop, and throttled progress reporting.
package job

import "time"

// Status is the lifecycle tag of a Job. Valid transitions:
// Pending -> Processing -> (Completed | Failed | Cancelled), or
// Pending -> Cancelled, or Processing -> Cancelled.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Completed  Status = "completed"
	Failed     Status = "failed"
	Cancelled  Status = "cancelled"
)

// Terminal reports whether s is one of the lifecycle's terminal states.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Failed, Cancelled:
		return true
	default:
		return false
	}
}

// Request is the opaque submission payload carried by a Job.
type Request struct {
	Message             string            `json:"message"`
	DocumentContent     string            `json:"document_content,omitempty"`
	ConversationHistory []HistoryTurn     `json:"chat_history,omitempty"`
	JobType             string            `json:"job_type,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// HistoryTurn is one entry of a conversation transcript.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the assembled, user-facing outcome of a completed job.
type Result struct {
	Content   string `json:"content"`
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
}

// Job is the central orchestrator record. Every field beyond
// CompletedAt and the terminal Result/Error payload is immutable once
// Status reaches a terminal state.
type Job struct {
	ID                  string     `json:"id"`
	Status              Status     `json:"status"`
	JobType             string     `json:"job_type"`
	Request             Request    `json:"request"`
	SessionID           string     `json:"session_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	Progress            int        `json:"progress"`
	EstimatedDurationS  int        `json:"estimated_duration_s"`
	Result              *Result    `json:"result,omitempty"`
	Error               string     `json:"error,omitempty"`
}

// View is the immutable snapshot handed to polling clients; it never
// aliases the store's internal Job value.
type View struct {
	ID                 string     `json:"job_id"`
	Status             Status     `json:"status"`
	Progress           int        `json:"progress"`
	CreatedAt          time.Time  `json:"created_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	EstimatedDurationS int        `json:"estimated_duration"`
	Error              string     `json:"error,omitempty"`
}

func (j *Job) snapshot() View {
	return View{
		ID:                 j.ID,
		Status:             j.Status,
		Progress:           j.Progress,
		CreatedAt:          j.CreatedAt,
		StartedAt:          j.StartedAt,
		CompletedAt:        j.CompletedAt,
		EstimatedDurationS: j.EstimatedDurationS,
		Error:              j.Error,
	}
}

// Stats is the store-wide statistics snapshot returned by Stats(). When
// Stats is called with a non-empty session id, TotalJobs and
// StatusCounts are scoped to that session's jobs; MaxJobs/JobTTL/
// LastCleanup always describe the store as a whole.
type Stats struct {
	TotalJobs     int            `json:"total_jobs"`
	StatusCounts  map[Status]int `json:"status_counts"`
	MaxJobs       int            `json:"max_jobs"`
	JobTTL        time.Duration  `json:"job_ttl"`
	LastCleanup   time.Time      `json:"last_cleanup"`
}

// ListEntry is one row of the list() API.
type ListEntry struct {
	ID        string    `json:"job_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Progress  int       `json:"progress"`
	SessionID string    `json:"session_id,omitempty"`
}

// DefaultEstimates is the job_type -> estimated_duration_s lookup table,
// restored from the source system's job_queue.py _estimate_duration.
var DefaultEstimates = map[string]int{
	"prior_art_search": 240,
	"claim_drafting":   120,
	"claim_analysis":   60,
	"web_search":       30,
	"general_chat":     30,
}

// DefaultEstimate is used for an unrecognized job_type.
const DefaultEstimate = 120

// EstimateDuration looks up the estimated duration for jobType, falling
// back to DefaultEstimate.
func EstimateDuration(estimates map[string]int, jobType string) int {
	if d, ok := estimates[jobType]; ok {
		return d
	}
	return DefaultEstimate
}

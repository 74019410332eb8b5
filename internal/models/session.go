package models

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// FailedJob records why a single job was skipped during a run.
type FailedJob struct {
	JobID string `json:"job_id"`
	Error string `json:"error"`
}

// ProcessingSession is the mutable bookkeeping for one pipeline run. It lives
// only in process memory; a restart discards it. The pipeline is the single
// writer, the UI poller reads snapshots.
type ProcessingSession struct {
	SessionID        string
	Status           SessionStatus
	TotalJobs        int
	CompletedJobIDs  []string
	FailedJobs       []FailedJob
	CacheHits        int
	CacheMisses      int
	AICallsMade      int
	PromptTokens     int
	CompletionTokens int
	CurrentJobIndex  int
	CurrentJobID     string
	CurrentStep      string
	Commands         []string
	ArtifactPath     string
	Error            string
	StartTime        time.Time
	EndTime          *time.Time
}

// SessionSnapshot is the read-only view returned to the progress poller.
type SessionSnapshot struct {
	SessionID        string        `json:"session_id"`
	Status           SessionStatus `json:"status"`
	TotalJobs        int           `json:"total_jobs"`
	CompletedJobs    int           `json:"completed_jobs"`
	FailedJobs       int           `json:"failed_jobs"`
	CompletedJobIDs  []string      `json:"completed_job_ids"`
	FailedJobList    []FailedJob   `json:"failed_job_list"`
	CacheHits        int           `json:"cache_hits"`
	CacheMisses      int           `json:"cache_misses"`
	AICallsMade      int           `json:"ai_calls_made"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	MoneySaved       float64       `json:"money_saved"`
	CurrentJobIndex  int           `json:"current_job_index"`
	CurrentJobID     string        `json:"current_job_id"`
	CurrentStep      string        `json:"current_step"`
	Commands         []string      `json:"ai_commands"`
	ArtifactPath     string        `json:"artifact_path,omitempty"`
	Error            string        `json:"error,omitempty"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
}

// Package queue implements the durable job lifecycle engine: the persistent
// job state machine, the atomic multi-worker claim protocol, the
// retry/backoff policy and the aggregate metrics row.
//
// ARCHITECTURE: All coordination happens through the shared SQLite store.
// - Worker processes never talk to each other directly
// - Every read-modify-write that must be atomic (claim, state transition +
//   metrics update, DLQ move/retry) runs in one immediate-lock transaction
// - Rows returned to callers are snapshots; re-fetch to observe concurrent changes
package queue

import (
	"time"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending    JobState = "pending"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
	StateDead       JobState = "dead"
)

// IsValidState returns true if the state string is a valid JobState
func IsValidState(s string) bool {
	switch JobState(s) {
	case StatePending, StateProcessing, StateCompleted, StateFailed, StateDead:
		return true
	default:
		return false
	}
}

// Job is the unit of work: an external command executed by exactly one worker
// at a time under a wall-clock timeout.
//
// State machine:
//
//	pending ──claim──▶ processing ──success──▶ completed
//	   ▲                   │
//	   │                   ├──failure, attempts < max_retries──▶ failed ──claim after backoff──▶ processing
//	   │                   └──failure, attempts ≥ max_retries──▶ dead
//	   └──────────────dlq retry (administrative)◀── dead
//
// completed and (unretried) dead are terminal.
type Job struct {
	ID            string     `json:"id"`
	Command       string     `json:"command"`
	State         JobState   `json:"state"`
	Attempts      int        `json:"attempts"`
	MaxRetries    int        `json:"max_retries"`
	Priority      int        `json:"priority"`
	Timeout       int        `json:"timeout"` // seconds
	RunAt         time.Time  `json:"run_at"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	OutputPath    string     `json:"output_path,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}

// TimeoutDuration returns the job timeout as a time.Duration
func (j *Job) TimeoutDuration() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// Eligible reports whether the job could be claimed at the given instant.
// Pending jobs and failed jobs whose backoff has elapsed form the eligible pool.
func (j *Job) Eligible(now time.Time) bool {
	if j.State != StatePending && j.State != StateFailed {
		return false
	}
	return !j.NextAttemptAt.After(now)
}

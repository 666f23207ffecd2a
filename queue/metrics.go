package queue

import (
	"time"

	"github.com/rishiakkala/queuectl/errors"
)

// Metrics is the single aggregate row maintained alongside job transitions.
// failed_jobs counts failure events, not distinct jobs: a job retried twice
// contributes two. avg_runtime_seconds is the mean over completed jobs only.
type Metrics struct {
	TotalJobs         int       `json:"total_jobs"`
	CompletedJobs     int       `json:"completed_jobs"`
	FailedJobs        int       `json:"failed_jobs"`
	DeadJobs          int       `json:"dead_jobs"`
	AvgRuntimeSeconds float64   `json:"avg_runtime_seconds"`
	ActiveWorkers     int       `json:"active_workers"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetMetrics returns the current aggregate metrics snapshot
func (s *Store) GetMetrics() (*Metrics, error) {
	var m Metrics
	err := s.db.QueryRow(`
		SELECT total_jobs, completed_jobs, failed_jobs, dead_jobs,
		       avg_runtime_seconds, active_workers, updated_at
		FROM metrics`,
	).Scan(&m.TotalJobs, &m.CompletedJobs, &m.FailedJobs, &m.DeadJobs,
		&m.AvgRuntimeSeconds, &m.ActiveWorkers, &m.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read metrics")
	}
	return &m, nil
}

// RegisterWorker increments the live worker count. Must be paired with a
// deferred DeregisterWorker for the lifetime of the worker loop.
func (s *Store) RegisterWorker() error {
	_, err := s.db.Exec(
		`UPDATE metrics SET active_workers = active_workers + 1, updated_at = ?`,
		time.Now(),
	)
	return errors.Wrap(err, "failed to register worker")
}

// DeregisterWorker decrements the live worker count
func (s *Store) DeregisterWorker() error {
	_, err := s.db.Exec(
		`UPDATE metrics SET active_workers = active_workers - 1, updated_at = ?`,
		time.Now(),
	)
	return errors.Wrap(err, "failed to deregister worker")
}

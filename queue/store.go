package queue

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/rishiakkala/queuectl/errors"
)

// Store provides typed operations over the shared jobs/metrics/config tables.
// It is safe for use from multiple processes: every multi-row mutation runs in
// a single immediate-lock transaction (see db.Open).
type Store struct {
	db     *sql.DB
	logDir string
}

// NewStore creates a job store. logDir is where per-job log artifacts live;
// it is recorded as each job's output_path at enqueue time.
func NewStore(db *sql.DB, logDir string) *Store {
	return &Store{db: db, logDir: logDir}
}

// DB exposes the underlying handle for read-only collaborators (dashboard)
func (s *Store) DB() *sql.DB {
	return s.db
}

// LogDir returns the configured job log directory
func (s *Store) LogDir() string {
	return s.logDir
}

// Enqueue validates the spec, applies store defaults for absent options and
// inserts the job as pending. The metrics total_jobs counter is incremented in
// the same transaction. Returns ErrDuplicateID if the id already exists and
// ErrValidation before touching the store if the spec is malformed.
func (s *Store) Enqueue(spec *JobSpec) (*Job, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	defaults, err := s.Defaults()
	if err != nil {
		return nil, err
	}

	priority := defaults.Priority
	if spec.Priority != nil {
		priority = *spec.Priority
	}
	timeout := defaults.Timeout
	if spec.Timeout != nil {
		timeout = *spec.Timeout
	}
	maxRetries := defaults.MaxRetries
	if spec.MaxRetries != nil {
		maxRetries = *spec.MaxRetries
	}

	runAt, err := ParseTime(spec.RunAt)
	if err != nil {
		return nil, errors.NewValidationError("invalid 'run_at' format: %v", err)
	}

	now := time.Now()
	job := &Job{
		ID:            spec.ID,
		Command:       spec.Command,
		State:         StatePending,
		Attempts:      0,
		MaxRetries:    maxRetries,
		Priority:      priority,
		Timeout:       timeout,
		RunAt:         runAt,
		NextAttemptAt: runAt,
		CreatedAt:     now,
		UpdatedAt:     now,
		OutputPath:    filepath.Join(s.logDir, spec.ID+".log"),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin enqueue transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO jobs (
			id, command, state, attempts, max_retries, priority, timeout,
			run_at, next_attempt_at, created_at, updated_at, output_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Command, job.State, job.Attempts, job.MaxRetries,
		job.Priority, job.Timeout, job.RunAt, job.NextAttemptAt,
		job.CreatedAt, job.UpdatedAt, job.OutputPath,
	)
	if err != nil {
		if isPrimaryKeyConflict(err) {
			return nil, errors.Wrapf(errors.ErrDuplicateID, "job %q already exists", job.ID)
		}
		err = errors.Wrap(err, "failed to enqueue job")
		err = errors.WithDetail(err, fmt.Sprintf("Job ID: %s", job.ID))
		return nil, err
	}

	if _, err := tx.Exec(
		`UPDATE metrics SET total_jobs = total_jobs + 1, updated_at = ?`, now,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update total job count")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit enqueue")
	}

	return job, nil
}

// isPrimaryKeyConflict reports whether err is a SQLite primary key violation
func isPrimaryKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Get returns the job snapshot for id, or ErrNotFound
func (s *Store) Get(id string) (*Job, error) {
	var job Job
	err := scanJob(s.db.QueryRow(
		`SELECT `+jobSelectColumns+` FROM jobs WHERE id = ?`, id,
	), &job)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get job %s", id)
	}
	return &job, nil
}

// List returns jobs ordered by priority descending, then creation time
// ascending (FIFO within a priority tier). state is an optional filter.
func (s *Store) List(state *JobState, limit int) ([]*Job, error) {
	var rows *sql.Rows
	var err error

	base := `SELECT ` + jobSelectColumns + ` FROM jobs`
	if state != nil {
		rows, err = s.db.Query(base+` WHERE state = ? ORDER BY priority DESC, created_at ASC LIMIT ?`, *state, limit)
	} else {
		rows, err = s.db.Query(base+` ORDER BY priority DESC, created_at ASC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListDLQ returns all dead jobs, most recently updated first
func (s *Store) ListDLQ() ([]*Job, error) {
	rows, err := s.db.Query(
		`SELECT ` + jobSelectColumns + ` FROM jobs WHERE state = 'dead' ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list dead letter queue")
	}
	defer rows.Close()

	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		var job Job
		if err := scanJob(rows, &job); err != nil {
			return nil, errors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating jobs")
	}
	return jobs, nil
}

// Summary is the per-state job count plus the live worker count
type Summary struct {
	Pending       int `json:"pending"`
	Processing    int `json:"processing"`
	Completed     int `json:"completed"`
	Failed        int `json:"failed"`
	Dead          int `json:"dead"`
	ActiveWorkers int `json:"active_workers"`
}

// Summary computes per-state counts and the active worker count in one
// transaction so the two reads are consistent with each other.
func (s *Store) Summary() (*Summary, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin summary transaction")
	}
	defer tx.Rollback()

	var sum Summary
	err = tx.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN state = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN state = 'processing' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN state = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN state = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN state = 'dead' THEN 1 ELSE 0 END), 0)
		FROM jobs`,
	).Scan(&sum.Pending, &sum.Processing, &sum.Completed, &sum.Failed, &sum.Dead)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute state summary")
	}

	if err := tx.QueryRow(`SELECT active_workers FROM metrics`).Scan(&sum.ActiveWorkers); err != nil {
		return nil, errors.Wrap(err, "failed to read active worker count")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit summary")
	}
	return &sum, nil
}

// Claim atomically hands the caller the highest-priority eligible job.
//
// Eligible means state pending or failed with next_attempt_at in the past.
// Selection and the transition to processing happen in ONE conditional update
// inside an immediate transaction; scanning then separately updating would let
// two workers claim the same job. Returns (nil, nil) when nothing is eligible.
func (s *Store) Claim() (*Job, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin claim transaction")
	}
	defer tx.Rollback()

	var job Job
	err = scanJob(tx.QueryRow(`
		UPDATE jobs
		SET state = 'processing',
		    updated_at = ?
		WHERE id IN (
			SELECT id FROM jobs
			WHERE state IN ('pending', 'failed')
			  AND next_attempt_at <= ?
			ORDER BY priority DESC, created_at ASC
			LIMIT 1
		)
		RETURNING `+jobSelectColumns, now, now,
	), &job)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No eligible job - this is not an error
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to claim job")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit claim")
	}
	return &job, nil
}

// MarkCompleted transitions a processing job to completed and folds the
// elapsed runtime into the metrics row. The running-average update and the
// completed_jobs increment are one statement: both right-hand sides evaluate
// against the pre-update row, so no reader can observe a numerator/denominator
// mismatch.
func (s *Store) MarkCompleted(id string, elapsed time.Duration) error {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin completion transaction")
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE jobs
		SET state = 'completed',
		    completed_at = ?,
		    updated_at = ?
		WHERE id = ? AND state = 'processing'`,
		now, now, id,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to mark job %s completed", id)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	} else if n == 0 {
		return errors.Newf("job %s is not in processing state", id)
	}

	if _, err := tx.Exec(`
		UPDATE metrics
		SET avg_runtime_seconds = (avg_runtime_seconds * completed_jobs + ?) / (completed_jobs + 1),
		    completed_jobs = completed_jobs + 1,
		    updated_at = ?`,
		elapsed.Seconds(), now,
	); err != nil {
		return errors.Wrap(err, "failed to update completion metrics")
	}

	return errors.Wrap(tx.Commit(), "failed to commit completion")
}

// FailureOutcome describes what the retry/backoff policy decided for a failure
type FailureOutcome struct {
	Attempts      int
	Dead          bool
	Delay         time.Duration
	NextAttemptAt time.Time
}

// MarkFailed applies the retry/backoff policy to a failed execution.
//
// attempts' = attempts + 1. Below max_retries the job is rescheduled as
// failed with next_attempt_at = now + backoff_base^attempts'; otherwise it
// moves to the dead letter queue. Job row and metrics counter are updated in
// one transaction. backoff_base is read from the config table per decision.
func (s *Store) MarkFailed(job *Job, reason string) (*FailureOutcome, error) {
	attempts := job.Attempts + 1
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin failure transaction")
	}
	defer tx.Rollback()

	outcome := &FailureOutcome{Attempts: attempts}

	if attempts < job.MaxRetries {
		base := s.ConfigInt(ConfigBackoffBase, DefaultBackoffBase)
		outcome.Delay = BackoffDelay(base, attempts)
		outcome.NextAttemptAt = now.Add(outcome.Delay)

		if _, err := tx.Exec(`
			UPDATE jobs
			SET state = 'failed',
			    attempts = ?,
			    next_attempt_at = ?,
			    error_message = ?,
			    updated_at = ?
			WHERE id = ?`,
			attempts, outcome.NextAttemptAt, reason, now, job.ID,
		); err != nil {
			return nil, errors.Wrapf(err, "failed to reschedule job %s", job.ID)
		}

		if _, err := tx.Exec(
			`UPDATE metrics SET failed_jobs = failed_jobs + 1, updated_at = ?`, now,
		); err != nil {
			return nil, errors.Wrap(err, "failed to update failure metrics")
		}
	} else {
		outcome.Dead = true

		if _, err := tx.Exec(`
			UPDATE jobs
			SET state = 'dead',
			    attempts = ?,
			    error_message = ?,
			    updated_at = ?
			WHERE id = ?`,
			attempts, reason, now, job.ID,
		); err != nil {
			return nil, errors.Wrapf(err, "failed to move job %s to dead letter queue", job.ID)
		}

		if _, err := tx.Exec(
			`UPDATE metrics SET dead_jobs = dead_jobs + 1, updated_at = ?`, now,
		); err != nil {
			return nil, errors.Wrap(err, "failed to update dead job metrics")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit failure")
	}
	return outcome, nil
}

// MoveToDLQ forces a job into the dead state regardless of attempts.
// Administrative override; increments metrics.dead_jobs.
func (s *Store) MoveToDLQ(id string) error {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin DLQ transaction")
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE jobs SET state = 'dead', updated_at = ? WHERE id = ?`, now, id,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to move job %s to dead letter queue", id)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	} else if n == 0 {
		return errors.NewNotFoundError("job not found: %s", id)
	}

	if _, err := tx.Exec(
		`UPDATE metrics SET dead_jobs = dead_jobs + 1, updated_at = ?`, now,
	); err != nil {
		return errors.Wrap(err, "failed to update dead job metrics")
	}

	return errors.Wrap(tx.Commit(), "failed to commit DLQ move")
}

// RetryFromDLQ resets a dead job back to pending: attempts to 0, error
// cleared, eligible immediately. Returns false (a no-op, not an error) if the
// job is not currently dead; counters are left untouched in that case.
func (s *Store) RetryFromDLQ(id string) (bool, error) {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return false, errors.Wrap(err, "failed to begin DLQ retry transaction")
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE jobs
		SET state = 'pending',
		    attempts = 0,
		    next_attempt_at = ?,
		    error_message = NULL,
		    updated_at = ?
		WHERE id = ? AND state = 'dead'`,
		now, now, id,
	)
	if err != nil {
		return false, errors.Wrapf(err, "failed to retry job %s from dead letter queue", id)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, errors.Wrap(err, "failed to get rows affected")
	} else if n == 0 {
		return false, nil
	}

	if _, err := tx.Exec(
		`UPDATE metrics SET dead_jobs = dead_jobs - 1, updated_at = ?`, now,
	); err != nil {
		return false, errors.Wrap(err, "failed to update dead job metrics")
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit DLQ retry")
	}
	return true, nil
}

// RecoverStalled re-queues jobs stuck in processing whose last update is
// older than the threshold. A job only stays in processing that long when its
// worker crashed or was killed mid-execution; there is no automatic recovery,
// callers invoke this explicitly (worker pool start, admin command).
// Returns the number of jobs re-queued.
func (s *Store) RecoverStalled(olderThan time.Duration) (int, error) {
	now := time.Now()
	cutoff := now.Add(-olderThan)

	res, err := s.db.Exec(`
		UPDATE jobs
		SET state = 'pending',
		    next_attempt_at = ?,
		    updated_at = ?
		WHERE state = 'processing'
		  AND updated_at < ?`,
		now, now, cutoff,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to recover stalled jobs")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}
	return int(n), nil
}

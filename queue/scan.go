package queue

import (
	"database/sql"
)

// jobScanArgs holds the nullable column targets for scanning a job row.
type jobScanArgs struct {
	CompletedAt  sql.NullTime
	OutputPath   sql.NullString
	ErrorMessage sql.NullString
}

// jobSelectColumns is the standard column list for job SELECT queries,
// in the order expected by scanTargets.
const jobSelectColumns = `id, command, state, attempts, max_retries, priority, timeout,
	run_at, next_attempt_at, created_at, updated_at, completed_at, output_path, error_message`

// scanTargets returns scan destinations for the job and nullable args,
// matching jobSelectColumns order
func scanTargets(job *Job, args *jobScanArgs) []interface{} {
	return []interface{}{
		&job.ID,
		&job.Command,
		&job.State,
		&job.Attempts,
		&job.MaxRetries,
		&job.Priority,
		&job.Timeout,
		&job.RunAt,
		&job.NextAttemptAt,
		&job.CreatedAt,
		&job.UpdatedAt,
		&args.CompletedAt,
		&args.OutputPath,
		&args.ErrorMessage,
	}
}

// applyScanArgs copies the nullable columns into the job struct
func applyScanArgs(job *Job, args *jobScanArgs) {
	if args.CompletedAt.Valid {
		job.CompletedAt = &args.CompletedAt.Time
	}
	if args.OutputPath.Valid {
		job.OutputPath = args.OutputPath.String
	}
	if args.ErrorMessage.Valid {
		job.ErrorMessage = args.ErrorMessage.String
	}
}

// rowScanner abstracts sql.Row and sql.Rows for single-job scans
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJob scans a single job from a row or rows cursor
func scanJob(row rowScanner, job *Job) error {
	args := &jobScanArgs{}
	if err := row.Scan(scanTargets(job, args)...); err != nil {
		return err
	}
	applyScanArgs(job, args)
	return nil
}

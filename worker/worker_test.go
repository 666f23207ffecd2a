package worker

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	qctltest "github.com/rishiakkala/queuectl/internal/testing"
	"github.com/rishiakkala/queuectl/joblog"
	"github.com/rishiakkala/queuectl/queue"
)

func newTestStore(t *testing.T) *queue.Store {
	t.Helper()
	return queue.NewStore(qctltest.CreateTestDB(t), t.TempDir())
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func intp(n int) *int {
	return &n
}

func TestProcessSuccessfulJob(t *testing.T) {
	store := newTestStore(t)
	w := New("w1", store, 10*time.Millisecond, testLogger())

	_, err := store.Enqueue(&queue.JobSpec{ID: "job1", Command: "echo done"})
	require.NoError(t, err)

	job, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, job)

	w.process(job)

	completed, err := store.Get("job1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateCompleted, completed.State)
	require.NotNil(t, completed.CompletedAt)

	content, err := joblog.Read(store.LogDir(), "job1")
	require.NoError(t, err)
	assert.Contains(t, content, "=== EXIT CODE ===\n0")
	assert.Contains(t, content, "done")

	metrics, err := store.GetMetrics()
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.CompletedJobs)
}

func TestProcessFailingJobSchedulesRetry(t *testing.T) {
	store := newTestStore(t)
	w := New("w1", store, 10*time.Millisecond, testLogger())

	_, err := store.Enqueue(&queue.JobSpec{ID: "job1", Command: "echo bad >&2; exit 2"})
	require.NoError(t, err)

	job, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, job)

	w.process(job)

	failed, err := store.Get("job1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateFailed, failed.State)
	assert.Equal(t, 1, failed.Attempts)
	assert.Equal(t, "exited with code 2", failed.ErrorMessage)
	assert.True(t, failed.NextAttemptAt.After(time.Now()))

	content, err := joblog.Read(store.LogDir(), "job1")
	require.NoError(t, err)
	assert.Contains(t, content, "=== EXIT CODE ===\n2")
	assert.Contains(t, content, "bad")
}

func TestProcessTimeoutWritesMarker(t *testing.T) {
	store := newTestStore(t)
	w := New("w1", store, 10*time.Millisecond, testLogger())

	_, err := store.Enqueue(&queue.JobSpec{
		ID:      "slow",
		Command: "sleep 5",
		Timeout: intp(1),
	})
	require.NoError(t, err)

	job, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, job)

	w.process(job)

	failed, err := store.Get("slow")
	require.NoError(t, err)
	assert.Equal(t, queue.StateFailed, failed.State)
	assert.Contains(t, failed.ErrorMessage, "timeout expired after 1s")

	content, err := joblog.Read(store.LogDir(), "slow")
	require.NoError(t, err)
	assert.Contains(t, content, "TIMEOUT after 1s")
	assert.Contains(t, content, "=== EXIT CODE ===\n-1")
}

func TestProcessRetryThenSuccess(t *testing.T) {
	store := newTestStore(t)
	w := New("w1", store, 10*time.Millisecond, testLogger())

	marker := t.TempDir() + "/ran"

	// Fails until the marker file exists, creates it on the first run
	command := "test -f " + marker + " || { touch " + marker + "; exit 1; }"
	_, err := store.Enqueue(&queue.JobSpec{ID: "flaky", Command: command})
	require.NoError(t, err)

	job, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, job)
	w.process(job)

	failed, err := store.Get("flaky")
	require.NoError(t, err)
	require.Equal(t, queue.StateFailed, failed.State)

	// Collapse the backoff window so the retry is claimable now
	_, err = store.DB().Exec(
		`UPDATE jobs SET next_attempt_at = ? WHERE id = ?`,
		time.Now().Add(-1*time.Second), "flaky",
	)
	require.NoError(t, err)

	retry, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.Attempts)
	w.process(retry)

	completed, err := store.Get("flaky")
	require.NoError(t, err)
	assert.Equal(t, queue.StateCompleted, completed.State)
	assert.Equal(t, 1, completed.Attempts)
	// A normal success does not clear the recorded failure; only DLQ retry does
	assert.Equal(t, "exited with code 1", completed.ErrorMessage)

	// Only the successful attempt's output remains
	content, err := joblog.Read(store.LogDir(), "flaky")
	require.NoError(t, err)
	assert.Contains(t, content, "=== EXIT CODE ===\n0")
}

func TestRunProcessesJobsUntilCancelled(t *testing.T) {
	store := newTestStore(t)
	w := New("w1", store, 10*time.Millisecond, testLogger())

	_, err := store.Enqueue(&queue.JobSpec{ID: "job1", Command: "echo hi"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		job, err := store.Get("job1")
		return err == nil && job.State == queue.StateCompleted
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	// Registration was balanced by deregistration
	metrics, err := store.GetMetrics()
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.ActiveWorkers)
}

func TestPoolRunsConcurrentWorkers(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := store.Enqueue(&queue.JobSpec{ID: id, Command: "echo " + id})
		require.NoError(t, err)
	}

	cfg := DefaultPoolConfig()
	cfg.Workers = 3
	cfg.PollInterval = 10 * time.Millisecond

	pool := NewPool(context.Background(), store, cfg, testLogger())
	pool.Start()

	require.Eventually(t, func() bool {
		summary, err := store.Summary()
		return err == nil && summary.Completed == 4
	}, 10*time.Second, 20*time.Millisecond)

	pool.Stop()

	metrics, err := store.GetMetrics()
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.ActiveWorkers)
	assert.Equal(t, 4, metrics.CompletedJobs)
}

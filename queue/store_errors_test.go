package queue

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishiakkala/queuectl/errors"
)

// Failure-path coverage with a mocked database; the happy paths run against
// real SQLite in store_test.go.

func TestGetMetricsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT total_jobs").WillReturnError(errors.New("disk I/O error"))

	store := NewStore(db, t.TempDir())
	_, err = store.GetMetrics()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read metrics")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	store := NewStore(db, t.TempDir())
	_, err = store.Summary()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin summary transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRollsBackOnScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE jobs").WillReturnError(errors.New("malformed database schema"))
	mock.ExpectRollback()

	store := NewStore(db, t.TempDir())
	_, err = store.Claim()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim job")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterWorkerExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE metrics SET active_workers").WillReturnError(errors.New("readonly database"))

	store := NewStore(db, t.TempDir())
	err = store.RegisterWorker()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register worker")
	assert.NoError(t, mock.ExpectationsWereMet())
}

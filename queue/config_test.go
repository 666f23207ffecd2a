package queue

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishiakkala/queuectl/errors"
)

func TestConfigSeededDefaults(t *testing.T) {
	store := newTestStore(t)

	value, err := store.GetConfig(ConfigMaxRetries)
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	value, err = store.GetConfig(ConfigBackoffBase)
	require.NoError(t, err)
	assert.Equal(t, "2", value)

	defaults, err := store.Defaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultPriority, defaults.Priority)
	assert.Equal(t, DefaultTimeout, defaults.Timeout)
	assert.Equal(t, DefaultMaxRetries, defaults.MaxRetries)
}

func TestSetConfigUpsert(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetConfig(ConfigBackoffBase, "3"))
	assert.Equal(t, 3, store.ConfigInt(ConfigBackoffBase, DefaultBackoffBase))

	require.NoError(t, store.SetConfig(ConfigBackoffBase, "5"))
	assert.Equal(t, 5, store.ConfigInt(ConfigBackoffBase, DefaultBackoffBase))

	require.NoError(t, store.SetConfig("custom_key", "hello"))
	value, err := store.GetConfig("custom_key")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestSetConfigEmptyKey(t *testing.T) {
	store := newTestStore(t)

	err := store.SetConfig("", "value")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestGetConfigNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConfig("no_such_key")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestConfigIntFallback(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, 42, store.ConfigInt("missing", 42))

	require.NoError(t, store.SetConfig("not_a_number", "abc"))
	assert.Equal(t, 7, store.ConfigInt("not_a_number", 7))
}

func TestBackoffBaseChangeAffectsNextFailure(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetConfig(ConfigBackoffBase, "5"))

	_, err := store.Enqueue(&JobSpec{ID: "job1", Command: "false"})
	require.NoError(t, err)

	job, err := store.Claim()
	require.NoError(t, err)
	require.NotNil(t, job)

	outcome, err := store.MarkFailed(job, "boom")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, outcome.Delay)
}

func TestAllConfigOrdered(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.AllConfig()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 4)

	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key, entries[i].Key)
	}
}

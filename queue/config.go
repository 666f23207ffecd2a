package queue

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/rishiakkala/queuectl/errors"
)

// Config keys stored in the durable config table. These are shared by every
// process using the store, unlike host config (package config) which is local.
const (
	ConfigMaxRetries      = "max_retries"
	ConfigBackoffBase     = "backoff_base"
	ConfigDefaultTimeout  = "default_timeout"
	ConfigDefaultPriority = "default_priority"
)

// Fallbacks when a config row is missing or unparsable
const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2
	DefaultTimeout     = 300
	DefaultPriority    = 0
)

// ConfigEntry is one key/value pair from the config table
type ConfigEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetConfig returns the value for key, or ErrNotFound
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.NewNotFoundError("config key not found: %s", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read config key %s", key)
	}
	return value, nil
}

// ConfigInt returns the integer value for key, falling back when the key is
// missing or the stored value does not parse
func (s *Store) ConfigInt(key string, fallback int) int {
	value, err := s.GetConfig(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// SetConfig upserts a config key with the current timestamp
func (s *Store) SetConfig(key, value string) error {
	if key == "" {
		return errors.NewValidationError("config key cannot be empty")
	}
	_, err := s.db.Exec(`
		INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return errors.Wrapf(err, "failed to set config key %s", key)
}

// AllConfig returns every config entry ordered by key
func (s *Store) AllConfig() ([]ConfigEntry, error) {
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM config ORDER BY key`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list config")
	}
	defer rows.Close()

	var entries []ConfigEntry
	for rows.Next() {
		var e ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan config entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating config")
	}
	return entries, nil
}

// QueueDefaults are the store-wide defaults applied to job specs that omit
// the corresponding option
type QueueDefaults struct {
	Priority   int
	Timeout    int
	MaxRetries int
}

// Defaults reads the current queue defaults from the config table
func (s *Store) Defaults() (QueueDefaults, error) {
	return QueueDefaults{
		Priority:   s.ConfigInt(ConfigDefaultPriority, DefaultPriority),
		Timeout:    s.ConfigInt(ConfigDefaultTimeout, DefaultTimeout),
		MaxRetries: s.ConfigInt(ConfigMaxRetries, DefaultMaxRetries),
	}, nil
}

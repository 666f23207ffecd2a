package queue

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rishiakkala/queuectl/errors"
)

// JobSpec is the job submission payload. Only id and command are required;
// every recognized option and its default is enumerated here. Optional fields
// use pointers so an absent field falls back to the store defaults while an
// explicit zero is honored.
type JobSpec struct {
	ID         string `json:"id"`
	Command    string `json:"command"`
	Priority   *int   `json:"priority,omitempty"`
	Timeout    *int   `json:"timeout,omitempty"`     // seconds, must be positive
	MaxRetries *int   `json:"max_retries,omitempty"` // non-negative
	RunAt      string `json:"run_at,omitempty"`      // ISO-8601 timestamp or "now"
}

// ParseSpec decodes a JSON job payload and validates it.
// Rejection happens here, before any persistence occurs.
func ParseSpec(payload []byte) (*JobSpec, error) {
	var spec JobSpec
	if err := json.Unmarshal(payload, &spec); err != nil {
		return nil, errors.Wrap(errors.ErrValidation, errors.Wrap(err, "invalid JSON").Error())
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks required fields and value ranges
func (s *JobSpec) Validate() error {
	if s.ID == "" {
		return errors.NewValidationError("missing required field: 'id'")
	}
	if s.Command == "" {
		return errors.NewValidationError("missing required field: 'command'")
	}
	if s.Timeout != nil && *s.Timeout <= 0 {
		return errors.NewValidationError("'timeout' must be a positive integer")
	}
	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return errors.NewValidationError("'max_retries' must be a non-negative integer")
	}
	if s.RunAt != "" {
		if _, err := ParseTime(s.RunAt); err != nil {
			return errors.NewValidationError("invalid 'run_at' format: %v", err)
		}
	}
	return nil
}

// Timestamp layouts accepted for run_at, tried in order
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a schedule timestamp into local time.
//
// Accepted forms:
//   - "" or "now" (case-insensitive): the current time
//   - ISO-8601, with or without a trailing "Z"; the marker is stripped and the
//     value treated as local time, matching how workers compare eligibility
//   - "2006-01-02 15:04:05"
func ParseTime(value string) (time.Time, error) {
	if value == "" || strings.EqualFold(value, "now") {
		return time.Now(), nil
	}

	// Strip the UTC marker; all scheduling is done in local time
	value = strings.TrimSuffix(value, "Z")

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf("invalid timestamp format: %q, use ISO 8601 ('2006-01-02T15:04:05') or 'now'", value)
}

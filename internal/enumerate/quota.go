package enumerate

import (
	"errors"
	"fmt"
)

// Quota bounds the size of one enumeration stage.
//
// The dominant risk of this pipeline is combinatorial growth, not time:
// a quota is checked every time a stage grows its working set, and the
// whole run fails fast once the count passes the limit. A limit of zero
// disables the check.
type Quota struct {
	stage string
	limit int
	peak  int
}

// NewQuota creates a quota for the named stage.
func NewQuota(stage string, limit int) *Quota {
	return &Quota{stage: stage, limit: limit}
}

// Check validates count against the limit and records the peak.
func (q *Quota) Check(count int) error {
	if q == nil {
		return nil
	}
	if count > q.peak {
		q.peak = count
	}
	if q.limit > 0 && count > q.limit {
		return &LimitError{Stage: q.stage, Count: count, Limit: q.limit}
	}
	return nil
}

// Peak returns the largest count seen. Used for logging.
func (q *Quota) Peak() int {
	if q == nil {
		return 0
	}
	return q.peak
}

// Limit returns the configured limit.
func (q *Quota) Limit() int {
	if q == nil {
		return 0
	}
	return q.limit
}

// LimitError is returned when a stage grows past its configured limit.
// Nothing has been emitted when it is returned.
type LimitError struct {
	Stage string // "fragments" or "configurations"
	Count int    // size reached
	Limit int    // configured maximum
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded: %d > %d", e.Stage, e.Count, e.Limit)
}

// IsLimitError returns true if err wraps a LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

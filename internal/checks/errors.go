package checks

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates no check exists for the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateDay indicates a check already persisted for the user on
	// that calendar day.
	ErrDuplicateDay = errors.New("check already exists for this day")
	// ErrStorageUnavailable indicates the history store could not be
	// reached; the quota slot is guaranteed unconsumed and the request is
	// safe to retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrTimeout indicates a bounded ingestion or storage call exceeded its
	// deadline.
	ErrTimeout = errors.New("operation timed out")
)

// QuotaError is the denial outcome of admission. It is an expected,
// user-facing result carrying retry-after information, not a system fault.
type QuotaError struct {
	NextEligibleAt time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily check limit reached, next eligible at %s", e.NextEligibleAt.Format(time.RFC3339))
}

package checks

import (
	"context"
	"time"
)

// Repo defines persistence operations for resume checks. Implementations
// must keep Append atomic: either the whole record lands or nothing does.
type Repo interface {
	// Append inserts a completed check. Returns ErrDuplicateDay when the
	// user already has a check persisted for that calendar day.
	Append(ctx context.Context, check ResumeCheck) error
	// ListByUser returns checks ordered by checkedAt descending, ties
	// broken by id descending.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeCheck, error)
	// LatestByUser returns the most recent check or ErrNotFound.
	LatestByUser(ctx context.Context, userID string) (ResumeCheck, error)
	// LastCheckedAt reports the timestamp of the most recent check, if any.
	// It backs the quota tracker, so admission state is always derived from
	// what actually persisted.
	LastCheckedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

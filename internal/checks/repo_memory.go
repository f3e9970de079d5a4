package checks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo, used when no database
// is configured and in tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string][]ResumeCheck // userId -> checks
	boundary *time.Location
}

// NewMemoryRepo constructs a MemoryRepo enforcing the per-day uniqueness in
// the given day-boundary timezone (UTC when nil).
func NewMemoryRepo(boundary *time.Location) *MemoryRepo {
	if boundary == nil {
		boundary = time.UTC
	}
	return &MemoryRepo{
		data:     make(map[string][]ResumeCheck),
		boundary: boundary,
	}
}

// Append inserts a completed check, rejecting a second check on the same
// calendar day.
func (r *MemoryRepo) Append(ctx context.Context, check ResumeCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	y, m, d := check.CheckedAt.In(r.boundary).Date()
	for _, existing := range r.data[check.UserID] {
		ey, em, ed := existing.CheckedAt.In(r.boundary).Date()
		if ey == y && em == m && ed == d {
			return ErrDuplicateDay
		}
	}
	r.data[check.UserID] = append(r.data[check.UserID], check)
	return nil
}

// ListByUser returns checks newest-first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ResumeCheck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userChecks := r.data[userID]
	r.mu.RUnlock()

	if len(userChecks) == 0 || offset >= len(userChecks) {
		return []ResumeCheck{}, nil
	}

	out := make([]ResumeCheck, len(userChecks))
	copy(out, userChecks)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckedAt.Equal(out[j].CheckedAt) {
			return out[i].CheckedAt.After(out[j].CheckedAt)
		}
		return out[i].ID > out[j].ID
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// LatestByUser returns the most recent check for a user.
func (r *MemoryRepo) LatestByUser(ctx context.Context, userID string) (ResumeCheck, error) {
	list, err := r.ListByUser(ctx, userID, 1, 0)
	if err != nil {
		return ResumeCheck{}, err
	}
	if len(list) == 0 {
		return ResumeCheck{}, ErrNotFound
	}
	return list[0], nil
}

// LastCheckedAt reports the most recent check time for a user.
func (r *MemoryRepo) LastCheckedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	latest, err := r.LatestByUser(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return latest.CheckedAt, true, nil
}

var _ Repo = (*MemoryRepo)(nil)

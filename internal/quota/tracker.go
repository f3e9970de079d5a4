package quota

import (
	"context"
	"time"
)

// LatestStore reports the most recent accepted check for a user. The checks
// repository implements it, so the quota is derived from history and a daily
// slot is only consumed once a check row actually persists.
type LatestStore interface {
	LastCheckedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

// Admission is the outcome of an admission attempt.
type Admission struct {
	Admitted       bool
	NextEligibleAt time.Time
}

// Status is the read-only view used by status queries.
type Status struct {
	CanCheckToday bool
	NextCheckTime *time.Time
}

// Tracker enforces at most one resume check per user per calendar day.
// Boundary controls which timezone's calendar day applies; it defaults to
// UTC when nil.
type Tracker struct {
	Store    LatestStore
	Boundary *time.Location
}

// NewTracker constructs a Tracker over the given store.
func NewTracker(store LatestStore, boundary *time.Location) *Tracker {
	return &Tracker{Store: store, Boundary: boundary}
}

// TryAdmit reports whether the user may run a check right now. Denied
// admissions carry the next boundary midnight.
func (t *Tracker) TryAdmit(ctx context.Context, userID string, now time.Time) (Admission, error) {
	last, ok, err := t.Store.LastCheckedAt(ctx, userID)
	if err != nil {
		return Admission{}, err
	}
	if ok && t.sameDay(last, now) {
		return Admission{Admitted: false, NextEligibleAt: t.nextBoundary(now)}, nil
	}
	return Admission{Admitted: true}, nil
}

// Peek is the read-only variant of TryAdmit used for status responses.
func (t *Tracker) Peek(ctx context.Context, userID string, now time.Time) (Status, error) {
	adm, err := t.TryAdmit(ctx, userID, now)
	if err != nil {
		return Status{}, err
	}
	if adm.Admitted {
		return Status{CanCheckToday: true}, nil
	}
	next := adm.NextEligibleAt
	return Status{CanCheckToday: false, NextCheckTime: &next}, nil
}

// NextBoundary returns the next day-boundary midnight after now.
func (t *Tracker) NextBoundary(now time.Time) time.Time {
	return t.nextBoundary(now)
}

func (t *Tracker) location() *time.Location {
	if t.Boundary != nil {
		return t.Boundary
	}
	return time.UTC
}

func (t *Tracker) sameDay(a, b time.Time) bool {
	loc := t.location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func (t *Tracker) nextBoundary(now time.Time) time.Time {
	loc := t.location()
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}

package quota

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLatestStore struct {
	last map[string]time.Time
	err  error
}

func (f *fakeLatestStore) LastCheckedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	if f.err != nil {
		return time.Time{}, false, f.err
	}
	last, ok := f.last[userID]
	return last, ok, nil
}

func TestTryAdmitFirstCheckOfDay(t *testing.T) {
	tracker := NewTracker(&fakeLatestStore{last: map[string]time.Time{}}, time.UTC)
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	adm, err := tracker.TryAdmit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("TryAdmit: %v", err)
	}
	if !adm.Admitted {
		t.Fatalf("expected admission for first check of the day")
	}
}

func TestTryAdmitDeniedSameDayCarriesNextUTCMidnight(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(&fakeLatestStore{last: map[string]time.Time{
		"user-1": time.Date(2024, time.January, 1, 8, 30, 0, 0, time.UTC),
	}}, time.UTC)

	adm, err := tracker.TryAdmit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("TryAdmit: %v", err)
	}
	if adm.Admitted {
		t.Fatalf("expected denial for second check on the same day")
	}
	wantNext := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !adm.NextEligibleAt.Equal(wantNext) {
		t.Fatalf("expected next eligible %v, got %v", wantNext, adm.NextEligibleAt)
	}
}

func TestTryAdmitNewUTCDateIsAdmitted(t *testing.T) {
	tracker := NewTracker(&fakeLatestStore{last: map[string]time.Time{
		"user-1": time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC),
	}}, time.UTC)

	now := time.Date(2024, time.January, 2, 0, 1, 0, 0, time.UTC)
	adm, err := tracker.TryAdmit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("TryAdmit: %v", err)
	}
	if !adm.Admitted {
		t.Fatalf("expected admission after the UTC day boundary")
	}
}

func TestPeekReflectsAdmission(t *testing.T) {
	store := &fakeLatestStore{last: map[string]time.Time{}}
	tracker := NewTracker(store, time.UTC)
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

	st, err := tracker.Peek(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if !st.CanCheckToday || st.NextCheckTime != nil {
		t.Fatalf("expected open slot, got %+v", st)
	}

	store.last["user-1"] = now.Add(-time.Hour)
	st, err = tracker.Peek(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if st.CanCheckToday {
		t.Fatalf("expected consumed slot, got %+v", st)
	}
	wantNext := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	if st.NextCheckTime == nil || !st.NextCheckTime.Equal(wantNext) {
		t.Fatalf("expected next check %v, got %v", wantNext, st.NextCheckTime)
	}
}

func TestConfigurableBoundaryTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	tracker := NewTracker(&fakeLatestStore{last: map[string]time.Time{
		// 21:00 UTC on Jan 1 is already 02:00 Jan 2 in UTC+5.
		"user-1": time.Date(2024, time.January, 1, 21, 0, 0, 0, time.UTC),
	}}, loc)

	now := time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)
	adm, err := tracker.TryAdmit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("TryAdmit: %v", err)
	}
	if adm.Admitted {
		t.Fatalf("both times fall on Jan 2 in UTC+5, expected denial")
	}
}

func TestTryAdmitPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("storage down")
	tracker := NewTracker(&fakeLatestStore{err: wantErr}, time.UTC)
	if _, err := tracker.TryAdmit(context.Background(), "user-1", time.Now().UTC()); !errors.Is(err, wantErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

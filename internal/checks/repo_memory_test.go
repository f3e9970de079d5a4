package checks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoAppendRejectsSameDay(t *testing.T) {
	repo := NewMemoryRepo(time.UTC)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first := ResumeCheck{ID: "a", UserID: "user-1", CheckedAt: base, Score: 50}
	if err := repo.Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}

	sameDay := ResumeCheck{ID: "b", UserID: "user-1", CheckedAt: base.Add(5 * time.Hour), Score: 60}
	if err := repo.Append(ctx, sameDay); !errors.Is(err, ErrDuplicateDay) {
		t.Fatalf("Append same day: got %v, want ErrDuplicateDay", err)
	}

	otherUser := ResumeCheck{ID: "c", UserID: "user-2", CheckedAt: base, Score: 70}
	if err := repo.Append(ctx, otherUser); err != nil {
		t.Fatalf("Append other user: %v", err)
	}

	nextDay := ResumeCheck{ID: "d", UserID: "user-1", CheckedAt: base.AddDate(0, 0, 1), Score: 65}
	if err := repo.Append(ctx, nextDay); err != nil {
		t.Fatalf("Append next day: %v", err)
	}
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo(time.UTC)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		check := ResumeCheck{
			ID:        string(rune('a' + i)),
			UserID:    "user-1",
			CheckedAt: base.AddDate(0, 0, i),
			Score:     40 + i,
		}
		if err := repo.Append(ctx, check); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	list, err := repo.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d checks, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CheckedAt.After(list[i-1].CheckedAt) {
			t.Fatalf("list not newest-first at index %d", i)
		}
	}
	if list[0].ID != "c" {
		t.Fatalf("newest id = %q, want %q", list[0].ID, "c")
	}
}

func TestMemoryRepoListLimitOffset(t *testing.T) {
	repo := NewMemoryRepo(time.UTC)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		check := ResumeCheck{
			ID:        string(rune('a' + i)),
			UserID:    "user-1",
			CheckedAt: base.AddDate(0, 0, i),
		}
		if err := repo.Append(ctx, check); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	list, err := repo.ListByUser(ctx, "user-1", 2, 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d checks, want 2", len(list))
	}
	if list[0].ID != "d" || list[1].ID != "c" {
		t.Fatalf("got ids %q %q, want d c", list[0].ID, list[1].ID)
	}

	empty, err := repo.ListByUser(ctx, "user-1", 10, 99)
	if err != nil {
		t.Fatalf("ListByUser big offset: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("got %d checks at offset 99, want 0", len(empty))
	}
}

func TestMemoryRepoLatestAndLastCheckedAt(t *testing.T) {
	repo := NewMemoryRepo(time.UTC)
	ctx := context.Background()

	if _, err := repo.LatestByUser(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LatestByUser empty: got %v, want ErrNotFound", err)
	}
	if _, ok, err := repo.LastCheckedAt(ctx, "user-1"); err != nil || ok {
		t.Fatalf("LastCheckedAt empty: got ok=%v err=%v", ok, err)
	}

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := repo.Append(ctx, ResumeCheck{ID: "a", UserID: "user-1", CheckedAt: at, Score: 81}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	latest, err := repo.LatestByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("LatestByUser: %v", err)
	}
	if latest.Score != 81 {
		t.Fatalf("latest score = %d, want 81", latest.Score)
	}

	last, ok, err := repo.LastCheckedAt(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("LastCheckedAt: got ok=%v err=%v", ok, err)
	}
	if !last.Equal(at) {
		t.Fatalf("LastCheckedAt = %v, want %v", last, at)
	}
}

func TestMemoryRepoBoundaryTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	repo := NewMemoryRepo(loc)
	ctx := context.Background()

	// 18:00 UTC and 20:00 UTC fall on different days in UTC+5.
	first := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	if err := repo.Append(ctx, ResumeCheck{ID: "a", UserID: "user-1", CheckedAt: first}); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if err := repo.Append(ctx, ResumeCheck{ID: "b", UserID: "user-1", CheckedAt: second}); err != nil {
		t.Fatalf("Append across boundary: %v", err)
	}
}

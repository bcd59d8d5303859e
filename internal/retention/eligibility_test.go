package retention

import (
	"context"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEligibleRecordsRetentionBoundary(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeSessions)

	store := NewMemoryStore()
	store.Add(DataTypeSessions, MemoryRecord{
		ID:        "session-old",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays + 1)),
	})
	store.Add(DataTypeSessions, MemoryRecord{
		ID:        "session-young",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays - 1)),
	})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	eligible, err := calc.EligibleRecords(context.Background(), DataTypeSessions, 10)
	if err != nil {
		t.Fatalf("EligibleRecords: %v", err)
	}
	if len(eligible) != 1 {
		t.Fatalf("expected 1 eligible record, got %d", len(eligible))
	}
	if eligible[0].ID != "session-old" {
		t.Fatalf("expected session-old to be eligible, got %s", eligible[0].ID)
	}

	wantDeletion := eligible[0].CreatedAt.AddDate(0, 0, policy.RetentionDays)
	if !eligible[0].DeletionDate.Equal(wantDeletion) {
		t.Fatalf("deletion date: got %v want %v", eligible[0].DeletionDate, wantDeletion)
	}
}

func TestEligibleRecordsUsesLastAccessedAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeCVDocuments)

	// Created well past retention but accessed recently: not eligible.
	recentAccess := now.AddDate(0, 0, -10)
	store := NewMemoryStore()
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:             "doc-active",
		CreatedAt:      now.AddDate(0, 0, -(policy.RetentionDays + 100)),
		LastAccessedAt: &recentAccess,
	})
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:        "doc-stale",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays + 100)),
	})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	eligible, err := calc.EligibleRecords(context.Background(), DataTypeCVDocuments, 10)
	if err != nil {
		t.Fatalf("EligibleRecords: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != "doc-stale" {
		t.Fatalf("expected only doc-stale eligible, got %+v", eligible)
	}
}

func TestEligibleRecordsOrderedOldestFirst(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeSessions)

	store := NewMemoryStore()
	base := now.AddDate(0, 0, -(policy.RetentionDays + 10))
	store.Add(DataTypeSessions, MemoryRecord{ID: "b", CreatedAt: base})
	store.Add(DataTypeSessions, MemoryRecord{ID: "a", CreatedAt: base})
	store.Add(DataTypeSessions, MemoryRecord{ID: "c", CreatedAt: base.AddDate(0, 0, -1)})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	eligible, err := calc.EligibleRecords(context.Background(), DataTypeSessions, 10)
	if err != nil {
		t.Fatalf("EligibleRecords: %v", err)
	}
	got := make([]string, 0, len(eligible))
	for _, rec := range eligible {
		got = append(got, rec.ID)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", got, want)
		}
	}
}

func TestNotificationWindowExcludesAlreadyEligible(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeCVDocuments)

	store := NewMemoryStore()
	// Past the deletion threshold: excluded from notification.
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:        "doc-eligible",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays + 5)),
	})
	// Inside the notification window.
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:        "doc-warned",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays - policy.NotificationDays + 5)),
	})
	// Still comfortably within retention.
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:        "doc-fresh",
		CreatedAt: now.AddDate(0, 0, -30),
	})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	window, err := calc.NotificationWindow(context.Background(), DataTypeCVDocuments, 10)
	if err != nil {
		t.Fatalf("NotificationWindow: %v", err)
	}
	if len(window) != 1 || window[0].ID != "doc-warned" {
		t.Fatalf("expected only doc-warned in window, got %+v", window)
	}
}

func TestNotificationWindowSeesPastDeletionBacklog(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeCVDocuments)

	// A deletion-eligible backlog as large as the page limit must not crowd
	// the in-window record out of the result.
	store := NewMemoryStore()
	for _, id := range []string{"doc-backlog-a", "doc-backlog-b", "doc-backlog-c"} {
		store.Add(DataTypeCVDocuments, MemoryRecord{
			ID:        id,
			CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays + 30)),
		})
	}
	store.Add(DataTypeCVDocuments, MemoryRecord{
		ID:        "doc-warned",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays - policy.NotificationDays + 5)),
	})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	window, err := calc.NotificationWindow(context.Background(), DataTypeCVDocuments, 3)
	if err != nil {
		t.Fatalf("NotificationWindow: %v", err)
	}
	if len(window) != 1 || window[0].ID != "doc-warned" {
		t.Fatalf("expected doc-warned in window, got %+v", window)
	}
}

func TestNotificationWindowEmptyForNonNotifyingTypes(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.Add(DataTypeSessions, MemoryRecord{ID: "s1", CreatedAt: now.AddDate(0, 0, -25)})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	window, err := calc.NotificationWindow(context.Background(), DataTypeSessions, 10)
	if err != nil {
		t.Fatalf("NotificationWindow: %v", err)
	}
	if len(window) != 0 {
		t.Fatalf("expected empty window, got %+v", window)
	}
}

func TestStatsCounts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	policy := PolicyFor(DataTypeGeneratedContent)

	store := NewMemoryStore()
	store.Add(DataTypeGeneratedContent, MemoryRecord{
		ID:        "gen-eligible",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays + 3)),
	})
	store.Add(DataTypeGeneratedContent, MemoryRecord{
		ID:        "gen-warned",
		CreatedAt: now.AddDate(0, 0, -(policy.RetentionDays - policy.NotificationDays + 2)),
	})
	store.Add(DataTypeGeneratedContent, MemoryRecord{
		ID:        "gen-fresh",
		CreatedAt: now.AddDate(0, 0, -7),
	})

	calc := &Calculator{Store: store, Now: fixedClock(now)}
	stats, err := calc.Stats(context.Background(), DataTypeGeneratedContent)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalCount != 3 {
		t.Fatalf("totalCount: got %d want 3", stats.TotalCount)
	}
	if stats.EligibleCount != 1 {
		t.Fatalf("eligibleCount: got %d want 1", stats.EligibleCount)
	}
	if stats.NotificationCount != 1 {
		t.Fatalf("notificationCount: got %d want 1", stats.NotificationCount)
	}
	if stats.OldestRecordAgeDays < policy.RetentionDays+3-1 {
		t.Fatalf("oldestRecordAgeDays too small: %d", stats.OldestRecordAgeDays)
	}
}

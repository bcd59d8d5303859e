package sessions

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStartAndList(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	ctx := context.Background()

	first, err := svc.Start(ctx, "user-1", "Mozilla/5.0", "203.0.113.7")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start(ctx, "user-2", "curl/8.5", "198.51.100.2"); err != nil {
		t.Fatalf("start: %v", err)
	}

	items, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != first.ID {
		t.Fatalf("unexpected sessions: %+v", items)
	}
	if !items[0].Active() {
		t.Fatal("fresh session should be active")
	}
}

func TestListOrdersByLastSeen(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	base := time.Now().UTC().Add(-2 * time.Hour)
	older := Session{ID: "s-old", UserID: "user-1", CreatedAt: base}
	newer := Session{ID: "s-new", UserID: "user-1", CreatedAt: base.Add(time.Hour)}
	for _, s := range []Session{older, newer} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// Touching the older session moves it to the front.
	if err := repo.Touch(ctx, "s-old"); err != nil {
		t.Fatalf("touch: %v", err)
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "s-old" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestRevoke(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	ctx := context.Background()

	session, err := svc.Start(ctx, "user-1", "", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := svc.Revoke(ctx, "user-2", session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoke by other user = %v, want ErrNotFound", err)
	}
	if err := svc.Revoke(ctx, "user-1", session.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := svc.Revoke(ctx, "user-1", session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second revoke = %v, want ErrNotFound", err)
	}

	items, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Active() {
		t.Fatalf("expected one revoked session, got %+v", items)
	}

	// Revoked sessions are no longer touchable.
	if err := repo.Touch(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch revoked = %v, want ErrNotFound", err)
	}
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

func TestReplayStore_RememberLookup(t *testing.T) {
	s := newSelectionSetup(t)
	ctx := context.Background()
	u := s.user(t, domain.RoleAnnotator)
	store := &ReplayStore{DB: s.db, TTL: time.Hour}

	if sel, err := store.Lookup(ctx, u.ID, s.queue.ID, "k1"); err != nil || sel != nil {
		t.Fatalf("empty store Lookup = (%v, %v)", sel, err)
	}
	if ok, err := store.Exists(ctx, u.ID, s.queue.ID, "k1", time.Now().UTC()); err != nil || ok {
		t.Fatalf("empty store Exists = (%v, %v)", ok, err)
	}

	sel, err := s.selects.Record(ctx, s.queue.ID, s.groupX.ID, u.ID, s.xA.ID, nil)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Remember(ctx, u.ID, s.queue.ID, "k1", sel.ID); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	// second writer for the same key is absorbed
	if err := store.Remember(ctx, u.ID, s.queue.ID, "k1", sel.ID); err != nil {
		t.Fatalf("Remember again: %v", err)
	}

	got, err := store.Lookup(ctx, u.ID, s.queue.ID, "k1")
	if err != nil || got == nil || got.ID != sel.ID {
		t.Fatalf("Lookup = (%v, %v), want %s", got, err, sel.ID)
	}
	if ok, _ := store.Exists(ctx, u.ID, s.queue.ID, "k1", time.Now().UTC()); !ok {
		t.Fatalf("Exists should be true after Remember")
	}

	// scoped by queue and user
	if got, _ := store.Lookup(ctx, u.ID, "other-queue", "k1"); got != nil {
		t.Fatalf("key leaked across queues")
	}
	if got, _ := store.Lookup(ctx, "other-user", s.queue.ID, "k1"); got != nil {
		t.Fatalf("key leaked across users")
	}
}

func TestReplayStore_ExpiryAndPurge(t *testing.T) {
	s := newSelectionSetup(t)
	ctx := context.Background()
	u := s.user(t, domain.RoleAnnotator)
	store := &ReplayStore{DB: s.db, TTL: time.Minute}

	sel, err := s.selects.Record(ctx, s.queue.ID, s.groupY.ID, u.ID, s.yA.ID, nil)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Remember(ctx, u.ID, s.queue.ID, "k", sel.ID); err != nil {
		t.Fatalf("Remember: %v", err)
	}

	later := time.Now().UTC().Add(2 * time.Minute)
	if ok, _ := store.Exists(ctx, u.ID, s.queue.ID, "k", later); ok {
		t.Fatalf("record should be expired")
	}
	n, err := store.Purge(ctx, later)
	if err != nil || n != 1 {
		t.Fatalf("Purge = (%d, %v), want 1", n, err)
	}
}

func TestReplayStore_RememberIgnoresBlankKey(t *testing.T) {
	f := newFixture(t)
	store := &ReplayStore{DB: f.db}
	if err := store.Remember(context.Background(), "u", "q", "  ", "sel"); err != nil {
		t.Fatalf("blank key should be a no-op, got %v", err)
	}
}

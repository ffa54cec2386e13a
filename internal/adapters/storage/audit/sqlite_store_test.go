package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"techfest/internal/adapters/storage"
	store "techfest/internal/adapters/storage/audit"
	domain "techfest/internal/domain/audit"
)

func TestSaveAndList(t *testing.T) {
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	s := store.NewSQLiteStore(db)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	events := []domain.Event{
		domain.NewEvent("a", base, domain.CategoryAccount, domain.ActionSignup).WithActor("u1", "ann@example.com"),
		domain.NewEvent("b", base.Add(time.Minute), domain.CategoryOutbox, domain.ActionRetry).WithActor("admin", "admin@example.com").WithResource("outbox_entry", "e1"),
		domain.NewEvent("c", base.Add(2*time.Minute), domain.CategoryAccount, domain.ActionLockout).WithActor("u1", "ann@example.com").WithSeverity(domain.SeverityWarning),
	}
	for _, e := range events {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	all, err := s.List(ctx, store.Filter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]domain.Event{events[2], events[1], events[0]}, all); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	accounts, _ := s.List(ctx, store.Filter{Category: domain.CategoryAccount, ActorID: "u1", Limit: 1})
	if len(accounts) != 1 || accounts[0].ID != "c" {
		t.Errorf("filtered list = %+v", accounts)
	}

	if err := s.Save(ctx, domain.Event{ID: "bad"}); err == nil {
		t.Error("expected invalid event to be rejected")
	}
}

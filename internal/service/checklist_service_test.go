package service

import (
	"context"
	"errors"
	"testing"

	"budgetbook/internal/models"
)

func TestChecklistItemLifecycle(t *testing.T) {
	store := newTestStore(t)
	svc := NewChecklistService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	mallory := createTestUser(t, store, "mallory@example.com", "Mallory")

	item, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{
		Name: "Pay rent", Month: 3, Year: 2026,
	})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if item.Group != models.DefaultChecklistGroup {
		t.Errorf("Group = %q, want %q", item.Group, models.DefaultChecklistGroup)
	}
	if item.Completed {
		t.Error("New item must start incomplete")
	}

	t.Run("owner updates", func(t *testing.T) {
		completed := true
		updated, err := svc.UpdateChecklistItem(ctx, alice.ID, item.ID, ChecklistItemUpdate{Completed: &completed})
		if err != nil {
			t.Fatalf("UpdateChecklistItem failed: %v", err)
		}
		if !updated.Completed {
			t.Error("Expected completed = true")
		}
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		name := "hijacked"
		if _, err := svc.UpdateChecklistItem(ctx, mallory.ID, item.ID, ChecklistItemUpdate{Name: &name}); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Update: got %v, want ErrUnauthorized", err)
		}
		if err := svc.DeleteChecklistItem(ctx, mallory.ID, item.ID); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Delete: got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if err := svc.DeleteChecklistItem(ctx, alice.ID, item.ID); err != nil {
			t.Fatalf("DeleteChecklistItem failed: %v", err)
		}
		items, err := svc.ListChecklistItems(ctx, alice.ID, 3, 2026)
		if err != nil {
			t.Fatalf("ListChecklistItems failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("Expected empty checklist, got %d items", len(items))
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{Month: 3, Year: 2026}); err == nil {
			t.Error("Expected error for empty name")
		}
		if _, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{Name: "x", Month: 13, Year: 2026}); err == nil {
			t.Error("Expected error for invalid period")
		}
	})
}

func TestChecklistSubscription(t *testing.T) {
	store := newTestStore(t)
	svc := NewChecklistService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	var snapshots [][]models.ChecklistItem
	cancel, err := svc.SubscribeChecklist(ctx, alice.ID, 3, 2026, func(items []models.ChecklistItem) {
		snapshots = append(snapshots, items)
	})
	if err != nil {
		t.Fatalf("SubscribeChecklist failed: %v", err)
	}

	if len(snapshots) != 1 {
		t.Fatalf("Expected the initial snapshot, got %d deliveries", len(snapshots))
	}
	if len(snapshots[0]) != 0 {
		t.Errorf("Initial snapshot = %+v, want empty", snapshots[0])
	}

	item, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{Name: "Pay rent", Month: 3, Year: 2026})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("Expected a delivery after add, got %d", len(snapshots))
	}
	if len(snapshots[1]) != 1 || snapshots[1][0].Name != "Pay rent" {
		t.Errorf("Snapshot after add = %+v", snapshots[1])
	}

	// A mutation in another period must not reach this subscriber.
	if _, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{Name: "Next month", Month: 4, Year: 2026}); err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("Received a snapshot for a non-matching period: %d deliveries", len(snapshots))
	}

	cancel()
	completed := true
	if _, err := svc.UpdateChecklistItem(ctx, alice.ID, item.ID, ChecklistItemUpdate{Completed: &completed}); err != nil {
		t.Fatalf("UpdateChecklistItem failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Errorf("Delivery after cancel: %d deliveries", len(snapshots))
	}
}

func TestChecklistShares(t *testing.T) {
	store := newTestStore(t)
	svc := NewChecklistService(store)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	inScope, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{
		Name: "Book flights", Group: "trip", Month: 3, Year: 2026,
	})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	outOfScope, err := svc.AddChecklistItem(ctx, alice.ID, ChecklistItemInput{
		Name: "Pay rent", Month: 3, Year: 2026,
	})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}

	share, err := svc.CreateChecklistShare(ctx, alice.ID, "trip", 3, 2026)
	if err != nil {
		t.Fatalf("CreateChecklistShare failed: %v", err)
	}
	if share.ID == "" {
		t.Fatal("Expected a share id")
	}

	t.Run("resolve", func(t *testing.T) {
		got, err := svc.ResolveChecklistShare(ctx, share.ID)
		if err != nil {
			t.Fatalf("ResolveChecklistShare failed: %v", err)
		}
		if got.CreatedBy != alice.ID || got.Group != "trip" {
			t.Errorf("Share = %+v", got)
		}

		if _, err := svc.ResolveChecklistShare(ctx, "missing"); !errors.Is(err, ErrShareNotFound) {
			t.Errorf("Unknown share: got %v, want ErrShareNotFound", err)
		}
	})

	t.Run("shared subscription sees only the shared group", func(t *testing.T) {
		var got []models.ChecklistItem
		cancel, err := svc.SubscribeSharedChecklist(ctx, share, func(items []models.ChecklistItem) {
			got = items
		})
		if err != nil {
			t.Fatalf("SubscribeSharedChecklist failed: %v", err)
		}
		defer cancel()

		if len(got) != 1 || got[0].ID != inScope.ID {
			t.Fatalf("Shared snapshot = %+v, want only the trip item", got)
		}
	})

	t.Run("toggle within scope", func(t *testing.T) {
		toggled, err := svc.ToggleSharedItem(ctx, share.ID, inScope.ID)
		if err != nil {
			t.Fatalf("ToggleSharedItem failed: %v", err)
		}
		if !toggled.Completed {
			t.Error("Expected completed = true after toggle")
		}

		toggled, err = svc.ToggleSharedItem(ctx, share.ID, inScope.ID)
		if err != nil {
			t.Fatalf("ToggleSharedItem failed: %v", err)
		}
		if toggled.Completed {
			t.Error("Expected completed = false after second toggle")
		}
	})

	t.Run("toggle outside scope rejected", func(t *testing.T) {
		if _, err := svc.ToggleSharedItem(ctx, share.ID, outOfScope.ID); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
		if _, err := svc.ToggleSharedItem(ctx, share.ID, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("whole-checklist share covers every group", func(t *testing.T) {
		all, err := svc.CreateChecklistShare(ctx, alice.ID, "", 3, 2026)
		if err != nil {
			t.Fatalf("CreateChecklistShare failed: %v", err)
		}
		if _, err := svc.ToggleSharedItem(ctx, all.ID, outOfScope.ID); err != nil {
			t.Errorf("Toggle under whole-checklist share failed: %v", err)
		}
	})
}

package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "budgetbook-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	alice := &models.User{Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "x"}
	bob := &models.User{Email: "bob@example.com", DisplayName: "Bob", PasswordHash: "x"}

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		if err := store.CreateUser(ctx, alice); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if alice.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if alice.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if err := store.CreateUser(ctx, bob); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown address", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil user, got %+v", user)
		}
	})

	t.Run("UpdateUserDisplayName", func(t *testing.T) {
		if err := store.UpdateUserDisplayName(ctx, alice.ID, "Alice B"); err != nil {
			t.Fatalf("UpdateUserDisplayName failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.DisplayName != "Alice B" {
			t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Alice B")
		}

		if err := store.UpdateUserDisplayName(ctx, "missing", "X"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
		}
	})

	budget := &models.Budget{OwnerID: alice.ID, Month: 3, Year: 2026}

	t.Run("CreateBudget and FindBudgetForUser", func(t *testing.T) {
		if err := store.CreateBudget(ctx, budget); err != nil {
			t.Fatalf("CreateBudget failed: %v", err)
		}
		if budget.ID == "" {
			t.Error("Expected budget ID to be generated")
		}

		found, err := store.FindBudgetForUser(ctx, alice.ID, 3, 2026)
		if err != nil {
			t.Fatalf("FindBudgetForUser failed: %v", err)
		}
		if found == nil || found.ID != budget.ID {
			t.Fatalf("Expected budget %s, got %+v", budget.ID, found)
		}

		none, err := store.FindBudgetForUser(ctx, alice.ID, 4, 2026)
		if err != nil {
			t.Fatalf("FindBudgetForUser failed: %v", err)
		}
		if none != nil {
			t.Errorf("Expected nil for empty period, got %+v", none)
		}
	})

	t.Run("CreateBudget enforces one budget per owner and period", func(t *testing.T) {
		dup := &models.Budget{OwnerID: alice.ID, Month: 3, Year: 2026}
		if err := store.CreateBudget(ctx, dup); !errors.Is(err, storage.ErrDuplicate) {
			t.Fatalf("Expected ErrDuplicate for second (owner, month, year), got %v", err)
		}

		// A different period or a different owner is still fine.
		if err := store.CreateBudget(ctx, &models.Budget{OwnerID: alice.ID, Month: 4, Year: 2026}); err != nil {
			t.Errorf("CreateBudget for another period failed: %v", err)
		}
		if err := store.CreateBudget(ctx, &models.Budget{OwnerID: bob.ID, Month: 5, Year: 2026}); err != nil {
			t.Errorf("CreateBudget for another owner failed: %v", err)
		}
	})

	t.Run("Membership is idempotent and resolves shared budgets", func(t *testing.T) {
		if err := store.AddBudgetMember(ctx, budget.ID, bob.ID); err != nil {
			t.Fatalf("AddBudgetMember failed: %v", err)
		}
		if err := store.AddBudgetMember(ctx, budget.ID, bob.ID); err != nil {
			t.Fatalf("AddBudgetMember (repeat) failed: %v", err)
		}

		got, err := store.GetBudget(ctx, budget.ID)
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if len(got.Members) != 1 || got.Members[0] != bob.ID {
			t.Fatalf("Members = %v, want [%s]", got.Members, bob.ID)
		}

		shared, err := store.FindBudgetForUser(ctx, bob.ID, 3, 2026)
		if err != nil {
			t.Fatalf("FindBudgetForUser failed: %v", err)
		}
		if shared == nil || shared.ID != budget.ID {
			t.Fatalf("Expected shared budget for member, got %+v", shared)
		}

		if err := store.RemoveBudgetMember(ctx, budget.ID, bob.ID); err != nil {
			t.Fatalf("RemoveBudgetMember failed: %v", err)
		}
		gone, err := store.FindBudgetForUser(ctx, bob.ID, 3, 2026)
		if err != nil {
			t.Fatalf("FindBudgetForUser failed: %v", err)
		}
		if gone != nil {
			t.Errorf("Expected no budget after unshare, got %+v", gone)
		}
	})

	item := &models.BudgetItem{BudgetID: budget.ID, UserID: alice.ID, Name: "Rent", Amount: 1000}

	t.Run("AdjustItemSpent applies server-side deltas", func(t *testing.T) {
		if err := store.CreateBudgetItem(ctx, item); err != nil {
			t.Fatalf("CreateBudgetItem failed: %v", err)
		}

		if err := store.AdjustItemSpent(ctx, item.ID, 250); err != nil {
			t.Fatalf("AdjustItemSpent failed: %v", err)
		}
		if err := store.AdjustItemSpent(ctx, item.ID, -100); err != nil {
			t.Fatalf("AdjustItemSpent failed: %v", err)
		}

		got, err := store.GetBudgetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetBudgetItem failed: %v", err)
		}
		if got.Spent != 150 {
			t.Errorf("Spent = %v, want 150", got.Spent)
		}

		if err := store.AdjustItemSpent(ctx, "missing", 10); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown item, got %v", err)
		}
	})

	t.Run("SetItemSpent overwrites the total", func(t *testing.T) {
		if err := store.SetItemSpent(ctx, item.ID, 42); err != nil {
			t.Fatalf("SetItemSpent failed: %v", err)
		}
		got, err := store.GetBudgetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetBudgetItem failed: %v", err)
		}
		if got.Spent != 42 {
			t.Errorf("Spent = %v, want 42", got.Spent)
		}
	})

	t.Run("RepointBudgetItems moves items keeping their ids", func(t *testing.T) {
		other := &models.Budget{OwnerID: bob.ID, Month: 3, Year: 2026}
		if err := store.CreateBudget(ctx, other); err != nil {
			t.Fatalf("CreateBudget failed: %v", err)
		}
		moved := &models.BudgetItem{BudgetID: other.ID, UserID: bob.ID, Name: "Food", Amount: 300}
		if err := store.CreateBudgetItem(ctx, moved); err != nil {
			t.Fatalf("CreateBudgetItem failed: %v", err)
		}

		n, err := store.RepointBudgetItems(ctx, other.ID, budget.ID)
		if err != nil {
			t.Fatalf("RepointBudgetItems failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Moved %d items, want 1", n)
		}

		got, err := store.GetBudgetItem(ctx, moved.ID)
		if err != nil {
			t.Fatalf("GetBudgetItem failed: %v", err)
		}
		if got.BudgetID != budget.ID {
			t.Errorf("BudgetID = %s, want %s", got.BudgetID, budget.ID)
		}

		if err := store.DeleteBudget(ctx, other.ID); err != nil {
			t.Fatalf("DeleteBudget failed: %v", err)
		}
		// The item survives its original budget's deletion.
		if _, err := store.GetBudgetItem(ctx, moved.ID); err != nil {
			t.Errorf("Repointed item lost after source budget delete: %v", err)
		}
	})

	t.Run("Transactions list newest first and sum per item", func(t *testing.T) {
		txs := []*models.Transaction{
			{UserID: alice.ID, Description: "early", Amount: 10, Date: "2026-03-01", Month: 3, Year: 2026, BudgetItemID: item.ID},
			{UserID: alice.ID, Description: "late", Amount: 20, Date: "2026-03-15", Month: 3, Year: 2026, BudgetItemID: item.ID},
			{UserID: alice.ID, Description: "other month", Amount: 5, Date: "2026-04-01", Month: 4, Year: 2026},
		}
		for _, tx := range txs {
			if err := store.CreateTransaction(ctx, tx); err != nil {
				t.Fatalf("CreateTransaction failed: %v", err)
			}
		}

		list, err := store.ListTransactions(ctx, alice.ID, 3, 2026)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 transactions for 3/2026, got %d", len(list))
		}
		if list[0].Description != "late" {
			t.Errorf("Expected newest date first, got %q", list[0].Description)
		}

		sum, err := store.SumTransactionsForItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("SumTransactionsForItem failed: %v", err)
		}
		if sum != 30 {
			t.Errorf("Sum = %v, want 30", sum)
		}

		sum, err = store.SumTransactionsForItem(ctx, "missing")
		if err != nil {
			t.Fatalf("SumTransactionsForItem failed: %v", err)
		}
		if sum != 0 {
			t.Errorf("Sum for unlinked item = %v, want 0", sum)
		}
	})

	t.Run("Categories CRUD", func(t *testing.T) {
		cat := &models.Category{UserID: alice.ID, Name: "Groceries"}
		if err := store.CreateCategory(ctx, cat); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}

		cats, err := store.ListCategories(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(cats) != 1 || cats[0].Name != "Groceries" {
			t.Fatalf("ListCategories = %+v", cats)
		}

		cat.Name = "Food"
		if err := store.UpdateCategory(ctx, cat); err != nil {
			t.Fatalf("UpdateCategory failed: %v", err)
		}
		got, err := store.GetCategory(ctx, cat.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if got.Name != "Food" {
			t.Errorf("Name = %q, want %q", got.Name, "Food")
		}

		if err := store.DeleteCategory(ctx, cat.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
		if _, err := store.GetCategory(ctx, cat.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Checklist items default group and keep creation order", func(t *testing.T) {
		first := &models.ChecklistItem{UserID: alice.ID, Name: "Pay rent", Month: 3, Year: 2026, CreatedAt: 100}
		second := &models.ChecklistItem{UserID: alice.ID, Name: "Top up savings", Group: "finance", Month: 3, Year: 2026, CreatedAt: 200}
		for _, it := range []*models.ChecklistItem{first, second} {
			if err := store.CreateChecklistItem(ctx, it); err != nil {
				t.Fatalf("CreateChecklistItem failed: %v", err)
			}
		}
		if first.Group != models.DefaultChecklistGroup {
			t.Errorf("Group = %q, want %q", first.Group, models.DefaultChecklistGroup)
		}

		items, err := store.ListChecklistItems(ctx, alice.ID, 3, 2026, "")
		if err != nil {
			t.Fatalf("ListChecklistItems failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		if items[0].Name != "Pay rent" {
			t.Errorf("Expected creation order, got %q first", items[0].Name)
		}

		scoped, err := store.ListChecklistItems(ctx, alice.ID, 3, 2026, "finance")
		if err != nil {
			t.Fatalf("ListChecklistItems failed: %v", err)
		}
		if len(scoped) != 1 || scoped[0].Name != "Top up savings" {
			t.Fatalf("Group filter returned %+v", scoped)
		}

		first.Completed = true
		if err := store.UpdateChecklistItem(ctx, first); err != nil {
			t.Fatalf("UpdateChecklistItem failed: %v", err)
		}
		got, err := store.GetChecklistItem(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetChecklistItem failed: %v", err)
		}
		if !got.Completed {
			t.Error("Expected completed flag to persist")
		}
	})

	t.Run("Checklist shares round-trip", func(t *testing.T) {
		share := &models.ChecklistShare{CreatedBy: alice.ID, Group: "finance", Month: 3, Year: 2026}
		if err := store.CreateChecklistShare(ctx, share); err != nil {
			t.Fatalf("CreateChecklistShare failed: %v", err)
		}
		if share.ID == "" {
			t.Error("Expected share ID to be generated")
		}

		got, err := store.GetChecklistShare(ctx, share.ID)
		if err != nil {
			t.Fatalf("GetChecklistShare failed: %v", err)
		}
		if got.CreatedBy != alice.ID || got.Group != "finance" || got.Month != 3 {
			t.Errorf("Share mismatch: %+v", got)
		}

		if _, err := store.GetChecklistShare(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown share, got %v", err)
		}
	})
}

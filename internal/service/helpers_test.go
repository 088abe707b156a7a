package service

import (
	"context"
	"path/filepath"
	"testing"

	"budgetbook/internal/models"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store storage.Store, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func createTestBudget(t *testing.T, store storage.Store, ownerID string, month, year int) *models.Budget {
	t.Helper()

	budget := &models.Budget{OwnerID: ownerID, Month: month, Year: year}
	if err := store.CreateBudget(context.Background(), budget); err != nil {
		t.Fatalf("Failed to create budget: %v", err)
	}
	return budget
}

func createTestItem(t *testing.T, store storage.Store, budgetID, userID, name string, amount float64) *models.BudgetItem {
	t.Helper()

	item := &models.BudgetItem{BudgetID: budgetID, UserID: userID, Name: name, Amount: amount}
	if err := store.CreateBudgetItem(context.Background(), item); err != nil {
		t.Fatalf("Failed to create budget item %s: %v", name, err)
	}
	return item
}

func itemSpent(t *testing.T, store storage.Store, itemID string) float64 {
	t.Helper()

	item, err := store.GetBudgetItem(context.Background(), itemID)
	if err != nil {
		t.Fatalf("Failed to load budget item %s: %v", itemID, err)
	}
	return item.Spent
}

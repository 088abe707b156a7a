// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"budgetbook/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	// Implementations wrap it with the entity and id for context.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// constraint, such as a second budget for one (owner, month, year).
	ErrDuplicate = errors.New("record already exists")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByEmail matches against the lowercased email; returns
	// (nil, nil) when no user has that address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserDisplayName(ctx context.Context, id, displayName string) error
}

// BudgetStore persists budgets and their shared-member lists.
type BudgetStore interface {
	// CreateBudget persists a new budget; ID and timestamps are assigned
	// by the store when unset. Returns ErrDuplicate when the owner
	// already has a budget for the period.
	CreateBudget(ctx context.Context, budget *models.Budget) error

	// GetBudget retrieves a budget with its member list (items excluded).
	GetBudget(ctx context.Context, budgetID string) (*models.Budget, error)

	// FindBudgetForUser resolves the budget the user sees for a period:
	// one they own, or failing that one shared with them. Returns
	// (nil, nil) when neither exists.
	FindBudgetForUser(ctx context.Context, userID string, month, year int) (*models.Budget, error)

	// ListBudgetsByOwner returns every budget the user owns for the
	// period. Normally at most one, but callers must tolerate more.
	ListBudgetsByOwner(ctx context.Context, ownerID string, month, year int) ([]*models.Budget, error)

	DeleteBudget(ctx context.Context, budgetID string) error

	// AddBudgetMember adds userID to the budget's shared-member set.
	// Adding an existing member is a no-op.
	AddBudgetMember(ctx context.Context, budgetID, userID string) error
	RemoveBudgetMember(ctx context.Context, budgetID, userID string) error
}

// BudgetItemStore persists budget line items and their running totals.
type BudgetItemStore interface {
	CreateBudgetItem(ctx context.Context, item *models.BudgetItem) error
	GetBudgetItem(ctx context.Context, itemID string) (*models.BudgetItem, error)
	ListBudgetItems(ctx context.Context, budgetID string) ([]models.BudgetItem, error)
	UpdateBudgetItem(ctx context.Context, item *models.BudgetItem) error
	DeleteBudgetItem(ctx context.Context, itemID string) error

	// AdjustItemSpent applies an atomic server-side delta to the item's
	// spent total. This must never be a read-modify-write: concurrent
	// deltas from shared-budget collaborators must all be reflected.
	AdjustItemSpent(ctx context.Context, itemID string, delta float64) error

	// SetItemSpent overwrites the spent total. Only the drift-repair
	// recomputation uses this.
	SetItemSpent(ctx context.Context, itemID string, spent float64) error

	// RepointBudgetItems moves every item of fromBudgetID onto
	// toBudgetID, preserving item ids, and reports how many moved.
	RepointBudgetItems(ctx context.Context, fromBudgetID, toBudgetID string) (int, error)
}

// TransactionStore persists transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)
	// ListTransactions returns the user's transactions, optionally
	// filtered to a period (month and year both set), newest date first
	// and most recently created first within a date.
	ListTransactions(ctx context.Context, userID string, month, year int) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, txID string) error

	// SumTransactionsForItem re-sums the amounts of all transactions
	// linked to the item, for spent-total repair.
	SumTransactionsForItem(ctx context.Context, itemID string) (float64, error)
}

// CategoryStore persists user-defined categories. The synthetic
// Uncategorized category is injected by the service layer, never stored.
type CategoryStore interface {
	CreateCategory(ctx context.Context, cat *models.Category) error
	GetCategory(ctx context.Context, catID string) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, catID string) error
}

// ChecklistStore persists checklist items and share records.
type ChecklistStore interface {
	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetChecklistItem(ctx context.Context, itemID string) (*models.ChecklistItem, error)
	// ListChecklistItems returns the owner's items in creation order,
	// optionally filtered by period (month and year both set) and by
	// group ("" matches all groups).
	ListChecklistItems(ctx context.Context, userID string, month, year int, group string) ([]models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, itemID string) error

	CreateChecklistShare(ctx context.Context, share *models.ChecklistShare) error
	GetChecklistShare(ctx context.Context, shareID string) (*models.ChecklistShare, error)
}

// Store is the full persistence surface. The abstraction allows swapping
// storage backends without changing the service layer.
type Store interface {
	UserStore
	BudgetStore
	BudgetItemStore
	TransactionStore
	CategoryStore
	ChecklistStore

	// Close releases any resources held by the store.
	Close() error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetbook/internal/metrics"
	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

// BudgetService manages monthly budgets and their line items.
//
// Access to a budget and its items is decided by one predicate: the
// owner always has access, shared members otherwise (checked through the
// item's parent budget, so a member may edit items the owner created and
// vice versa).
type BudgetService struct {
	store storage.Store
}

// NewBudgetService creates a new BudgetService with the given storage
// backend.
func NewBudgetService(store storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

// GetBudget resolves the budget the user sees for a period — owned or
// shared — with its items attached. Returns (nil, nil) when there is
// none.
func (s *BudgetService) GetBudget(ctx context.Context, userID string, month, year int) (*models.Budget, error) {
	if !models.ValidPeriod(month, year) {
		return nil, fmt.Errorf("invalid period %d/%d", month, year)
	}

	budget, err := s.store.FindBudgetForUser(ctx, userID, month, year)
	if err != nil || budget == nil {
		return nil, err
	}

	items, err := s.store.ListBudgetItems(ctx, budget.ID)
	if err != nil {
		return nil, err
	}
	budget.Items = items

	return budget, nil
}

// CreateBudget creates the user's budget for a period. If a budget
// already resolves for that period (owned or shared) it is returned
// instead, preserving the one-budget-per-period invariant.
func (s *BudgetService) CreateBudget(ctx context.Context, userID string, month, year int) (*models.Budget, error) {
	if !models.ValidPeriod(month, year) {
		return nil, fmt.Errorf("invalid period %d/%d", month, year)
	}

	existing, err := s.GetBudget(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	budget := &models.Budget{OwnerID: userID, Month: month, Year: year}
	if err := s.store.CreateBudget(ctx, budget); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost a create race; the winning budget is the one to use.
			return s.GetBudget(ctx, userID, month, year)
		}
		slog.Error("CreateBudget failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Budget created", "budget_id", budget.ID, "user_id", userID, "month", month, "year", year)
	budget.Items = []models.BudgetItem{}
	return budget, nil
}

// CopyPreviousMonthBudget seeds the target month from the month before:
// every item is copied with its limit and a fresh spent total of zero.
// Fails with ErrSourceNotFound — creating nothing — when the previous
// month has no budget or no items.
func (s *BudgetService) CopyPreviousMonthBudget(ctx context.Context, userID string, month, year int) (*models.Budget, error) {
	if !models.ValidPeriod(month, year) {
		return nil, fmt.Errorf("invalid period %d/%d", month, year)
	}

	prevMonth, prevYear := models.PreviousPeriod(month, year)
	source, err := s.GetBudget(ctx, userID, prevMonth, prevYear)
	if err != nil {
		return nil, err
	}
	if source == nil || len(source.Items) == 0 {
		return nil, ErrSourceNotFound
	}

	target, err := s.CreateBudget(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	for _, item := range source.Items {
		copied := &models.BudgetItem{
			BudgetID: target.ID,
			UserID:   userID,
			Name:     item.Name,
			Amount:   item.Amount,
			Spent:    0,
		}
		if err := s.store.CreateBudgetItem(ctx, copied); err != nil {
			return nil, fmt.Errorf("failed to copy item %q: %w", item.Name, err)
		}
		target.Items = append(target.Items, *copied)
	}

	slog.Info("Budget copied from previous month",
		"budget_id", target.ID, "user_id", userID, "items", len(target.Items))
	return target, nil
}

// AddBudgetItem creates a line item on a budget the caller can access.
func (s *BudgetService) AddBudgetItem(ctx context.Context, userID, budgetID, name string, amount float64) (*models.BudgetItem, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}

	if _, err := s.requireBudgetAccess(ctx, userID, budgetID); err != nil {
		return nil, err
	}

	item := &models.BudgetItem{
		BudgetID: budgetID,
		UserID:   userID,
		Name:     name,
		Amount:   amount,
		Spent:    0,
	}
	if err := s.store.CreateBudgetItem(ctx, item); err != nil {
		slog.Error("AddBudgetItem failed", "budget_id", budgetID, "error", err)
		return nil, err
	}

	slog.Info("Budget item created", "item_id", item.ID, "budget_id", budgetID, "user_id", userID)
	return item, nil
}

// UpdateBudgetItem changes an item's name and limit. The spent total is
// never editable here; it belongs to the reconciliation engine.
func (s *BudgetService) UpdateBudgetItem(ctx context.Context, userID, itemID, name string, amount float64) (*models.BudgetItem, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}

	item, err := s.requireItemAccess(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Name = name
	item.Amount = amount
	if err := s.store.UpdateBudgetItem(ctx, item); err != nil {
		slog.Error("UpdateBudgetItem failed", "item_id", itemID, "error", err)
		return nil, err
	}

	slog.Info("Budget item updated", "item_id", itemID, "user_id", userID)
	return item, nil
}

// DeleteBudgetItem removes an item from a budget the caller can access.
func (s *BudgetService) DeleteBudgetItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.requireItemAccess(ctx, userID, itemID); err != nil {
		return err
	}

	if err := s.store.DeleteBudgetItem(ctx, itemID); err != nil {
		slog.Error("DeleteBudgetItem failed", "item_id", itemID, "error", err)
		return err
	}

	slog.Info("Budget item deleted", "item_id", itemID, "user_id", userID)
	return nil
}

// RepairItemSpent recomputes an item's spent total from its linked
// transactions, replacing whatever the running deltas have accumulated.
// Idempotent; this is the repair path for reconciliation warnings.
func (s *BudgetService) RepairItemSpent(ctx context.Context, userID, itemID string) (*models.BudgetItem, error) {
	item, err := s.requireItemAccess(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	sum, err := s.store.SumTransactionsForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetItemSpent(ctx, itemID, sum); err != nil {
		return nil, err
	}

	metrics.SpentRepairs.Inc()
	slog.Info("Budget item spent repaired",
		"item_id", itemID, "was", item.Spent, "now", sum)

	item.Spent = sum
	return item, nil
}

// requireBudgetAccess loads a budget and verifies the caller is its
// owner or a shared member.
func (s *BudgetService) requireBudgetAccess(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !budget.HasAccess(userID) {
		return nil, ErrUnauthorized
	}
	return budget, nil
}

// requireItemAccess loads an item and checks access transitively through
// its parent budget.
func (s *BudgetService) requireItemAccess(ctx context.Context, userID, itemID string) (*models.BudgetItem, error) {
	item, err := s.store.GetBudgetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.requireBudgetAccess(ctx, userID, item.BudgetID); err != nil {
		return nil, err
	}
	return item, nil
}

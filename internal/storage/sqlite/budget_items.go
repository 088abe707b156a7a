package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

// CreateBudgetItem persists a new budget item.
func (s *SQLiteStore) CreateBudgetItem(ctx context.Context, item *models.BudgetItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budget_items (id, budget_id, user_id, name, amount, spent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.BudgetID, item.UserID, item.Name, item.Amount, item.Spent, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget item: %w", err)
	}

	return nil
}

// GetBudgetItem retrieves a budget item by ID.
func (s *SQLiteStore) GetBudgetItem(ctx context.Context, itemID string) (*models.BudgetItem, error) {
	item := &models.BudgetItem{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, budget_id, user_id, name, amount, spent, created_at, updated_at
		 FROM budget_items WHERE id = ?`,
		itemID,
	).Scan(&item.ID, &item.BudgetID, &item.UserID, &item.Name, &item.Amount, &item.Spent, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget item: %w", err)
	}

	return item, nil
}

// ListBudgetItems retrieves all items of a budget in creation order.
func (s *SQLiteStore) ListBudgetItems(ctx context.Context, budgetID string) ([]models.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, budget_id, user_id, name, amount, spent, created_at, updated_at
		 FROM budget_items WHERE budget_id = ? ORDER BY created_at, id`,
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget items: %w", err)
	}
	defer rows.Close()

	var items []models.BudgetItem
	for rows.Next() {
		var item models.BudgetItem
		if err := rows.Scan(&item.ID, &item.BudgetID, &item.UserID, &item.Name, &item.Amount, &item.Spent, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget items: %w", err)
	}

	return items, nil
}

// UpdateBudgetItem updates an item's name and amount. Spent is managed
// exclusively by AdjustItemSpent / SetItemSpent.
func (s *SQLiteStore) UpdateBudgetItem(ctx context.Context, item *models.BudgetItem) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budget_items SET name = ?, amount = ?, updated_at = ? WHERE id = ?",
		item.Name, item.Amount, time.Now().Unix(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget item %s: %w", item.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteBudgetItem removes a budget item by ID.
func (s *SQLiteStore) DeleteBudgetItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budget_items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete budget item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget item %s: %w", itemID, storage.ErrNotFound)
	}

	return nil
}

// AdjustItemSpent applies an atomic delta to the item's spent total.
// The adjustment is a single UPDATE with an in-database addition, so
// concurrent deltas from shared-budget collaborators all land; a
// read-modify-write here would lose updates under interleaving.
func (s *SQLiteStore) AdjustItemSpent(ctx context.Context, itemID string, delta float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budget_items SET spent = spent + ?, updated_at = ? WHERE id = ?",
		delta, time.Now().Unix(), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust spent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget item %s: %w", itemID, storage.ErrNotFound)
	}

	return nil
}

// SetItemSpent overwrites the spent total; used only by drift repair.
func (s *SQLiteStore) SetItemSpent(ctx context.Context, itemID string, spent float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budget_items SET spent = ?, updated_at = ? WHERE id = ?",
		spent, time.Now().Unix(), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to set spent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget item %s: %w", itemID, storage.ErrNotFound)
	}

	return nil
}

// RepointBudgetItems moves every item of fromBudgetID onto toBudgetID,
// preserving item ids so transaction links stay valid, and reports how
// many items moved.
func (s *SQLiteStore) RepointBudgetItems(ctx context.Context, fromBudgetID, toBudgetID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budget_items SET budget_id = ?, updated_at = ? WHERE budget_id = ?",
		toBudgetID, time.Now().Unix(), fromBudgetID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to repoint budget items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count repointed items: %w", err)
	}

	return int(n), nil
}

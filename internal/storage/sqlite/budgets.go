package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

// CreateBudget persists a new budget to the database. The unique index
// on (owner_id, month, year) makes it return storage.ErrDuplicate when
// the owner already has a budget for the period.
func (s *SQLiteStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if budget.CreatedAt == 0 {
		budget.CreatedAt = now
	}
	budget.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (id, owner_id, month, year, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		budget.ID, budget.OwnerID, budget.Month, budget.Year, budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("budget for owner %s in %d/%d: %w",
				budget.OwnerID, budget.Month, budget.Year, storage.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	return nil
}

// GetBudget retrieves a budget with its shared-member list.
func (s *SQLiteStore) GetBudget(ctx context.Context, budgetID string) (*models.Budget, error) {
	budget := &models.Budget{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, month, year, created_at, updated_at FROM budgets WHERE id = ?",
		budgetID,
	).Scan(&budget.ID, &budget.OwnerID, &budget.Month, &budget.Year, &budget.CreatedAt, &budget.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget %s: %w", budgetID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	members, err := s.listBudgetMembers(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	budget.Members = members

	return budget, nil
}

// FindBudgetForUser resolves the budget the user sees for a period: one
// they own first, otherwise one shared with them. Returns (nil, nil) when
// neither exists.
func (s *SQLiteStore) FindBudgetForUser(ctx context.Context, userID string, month, year int) (*models.Budget, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM budgets WHERE owner_id = ? AND month = ? AND year = ? LIMIT 1",
		userID, month, year,
	).Scan(&id)
	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx,
			`SELECT b.id FROM budgets b
			 JOIN budget_members m ON m.budget_id = b.id
			 WHERE m.user_id = ? AND b.month = ? AND b.year = ?
			 LIMIT 1`,
			userID, month, year,
		).Scan(&id)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve budget for user: %w", err)
	}

	return s.GetBudget(ctx, id)
}

// ListBudgetsByOwner returns every budget the user owns for the period.
func (s *SQLiteStore) ListBudgetsByOwner(ctx context.Context, ownerID string, month, year int) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner_id, month, year, created_at, updated_at FROM budgets WHERE owner_id = ? AND month = ? AND year = ?",
		ownerID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets by owner: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget := &models.Budget{}
		if err := rows.Scan(&budget.ID, &budget.OwnerID, &budget.Month, &budget.Year, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}

// DeleteBudget removes a budget. Member rows cascade.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, budgetID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("budget %s: %w", budgetID, storage.ErrNotFound)
	}

	return nil
}

// AddBudgetMember adds userID to the budget's shared-member set.
// Adding an existing member is a no-op.
func (s *SQLiteStore) AddBudgetMember(ctx context.Context, budgetID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO budget_members (budget_id, user_id) VALUES (?, ?)",
		budgetID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add budget member: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE budgets SET updated_at = ? WHERE id = ?",
		time.Now().Unix(), budgetID,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp budget: %w", err)
	}

	return nil
}

// RemoveBudgetMember removes userID from the budget's shared-member set.
func (s *SQLiteStore) RemoveBudgetMember(ctx context.Context, budgetID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM budget_members WHERE budget_id = ? AND user_id = ?",
		budgetID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove budget member: %w", err)
	}

	return nil
}

func (s *SQLiteStore) listBudgetMembers(ctx context.Context, budgetID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM budget_members WHERE budget_id = ? ORDER BY user_id",
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget members: %w", err)
	}

	return members, nil
}

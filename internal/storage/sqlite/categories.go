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

// CreateCategory persists a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	if cat.ID == "" {
		cat.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if cat.CreatedAt == 0 {
		cat.CreatedAt = now
	}
	cat.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		cat.ID, cat.UserID, cat.Name, cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, catID string) (*models.Category, error) {
	cat := &models.Category{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at, updated_at FROM categories WHERE id = ?",
		catID,
	).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %s: %w", catID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return cat, nil
}

// ListCategories retrieves all of a user's categories by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return cats, nil
}

// UpdateCategory renames a category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, cat *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, updated_at = ? WHERE id = ?",
		cat.Name, time.Now().Unix(), cat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("category %s: %w", cat.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteCategory removes a category by ID.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, catID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", catID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("category %s: %w", catID, storage.ErrNotFound)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

// CategoryService manages a user's transaction categories. The
// synthetic Uncategorized category heads every listing and rejects all
// mutation.
type CategoryService struct {
	store storage.Store
}

// NewCategoryService creates a new CategoryService with the given
// storage backend.
func NewCategoryService(store storage.Store) *CategoryService {
	return &CategoryService{store: store}
}

// ListCategories returns the system Uncategorized category followed by
// the user's own.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	return append([]models.Category{models.SystemUncategorized()}, cats...), nil
}

// SaveCategory creates a category, or renames one the caller owns when
// an id is given.
func (s *CategoryService) SaveCategory(ctx context.Context, userID string, cat models.Category) (*models.Category, error) {
	if cat.ID == models.SystemUncategorizedID {
		return nil, ErrSystemCategory
	}

	if cat.ID == "" {
		cat.UserID = userID
		if err := s.store.CreateCategory(ctx, &cat); err != nil {
			slog.Error("SaveCategory failed", "user_id", userID, "error", err)
			return nil, err
		}
		slog.Info("Category created", "category_id", cat.ID, "user_id", userID)
		return &cat, nil
	}

	existing, err := s.store.GetCategory(ctx, cat.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrUnauthorized
	}

	existing.Name = cat.Name
	if err := s.store.UpdateCategory(ctx, existing); err != nil {
		return nil, err
	}

	slog.Info("Category updated", "category_id", existing.ID, "user_id", userID)
	return existing, nil
}

// DeleteCategory removes a category the caller owns.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, catID string) error {
	if catID == models.SystemUncategorizedID {
		return ErrSystemCategory
	}

	cat, err := s.store.GetCategory(ctx, catID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if cat.UserID != userID {
		return ErrUnauthorized
	}

	if err := s.store.DeleteCategory(ctx, catID); err != nil {
		return err
	}

	slog.Info("Category deleted", "category_id", catID, "user_id", userID)
	return nil
}

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

// CreateChecklistItem persists a new checklist item.
func (s *SQLiteStore) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Group == "" {
		item.Group = models.DefaultChecklistGroup
	}
	now := time.Now().Unix()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checklist_items (id, user_id, item_group, name, completed, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Group, item.Name, boolToInt(item.Completed),
		item.Month, item.Year, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checklist item: %w", err)
	}

	return nil
}

// GetChecklistItem retrieves a checklist item by ID.
func (s *SQLiteStore) GetChecklistItem(ctx context.Context, itemID string) (*models.ChecklistItem, error) {
	item := &models.ChecklistItem{}
	var completed int

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, item_group, name, completed, month, year, created_at, updated_at
		 FROM checklist_items WHERE id = ?`,
		itemID,
	).Scan(&item.ID, &item.UserID, &item.Group, &item.Name, &completed,
		&item.Month, &item.Year, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}

	item.Completed = completed != 0
	return item, nil
}

// ListChecklistItems returns the owner's items in creation order,
// optionally filtered by period and group.
func (s *SQLiteStore) ListChecklistItems(ctx context.Context, userID string, month, year int, group string) ([]models.ChecklistItem, error) {
	query := `SELECT id, user_id, item_group, name, completed, month, year, created_at, updated_at
	          FROM checklist_items WHERE user_id = ?`
	args := []interface{}{userID}

	if month != 0 && year != 0 {
		query += " AND month = ? AND year = ?"
		args = append(args, month, year)
	}
	if group != "" {
		query += " AND item_group = ?"
		args = append(args, group)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var item models.ChecklistItem
		var completed int
		if err := rows.Scan(&item.ID, &item.UserID, &item.Group, &item.Name, &completed,
			&item.Month, &item.Year, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.Completed = completed != 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checklist items: %w", err)
	}

	return items, nil
}

// UpdateChecklistItem rewrites an item's mutable fields.
func (s *SQLiteStore) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE checklist_items SET item_group = ?, name = ?, completed = ?, updated_at = ? WHERE id = ?`,
		item.Group, item.Name, boolToInt(item.Completed), time.Now().Unix(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("checklist item %s: %w", item.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteChecklistItem removes a checklist item by ID.
func (s *SQLiteStore) DeleteChecklistItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM checklist_items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("checklist item %s: %w", itemID, storage.ErrNotFound)
	}

	return nil
}

// CreateChecklistShare persists a new, immutable share record.
func (s *SQLiteStore) CreateChecklistShare(ctx context.Context, share *models.ChecklistShare) error {
	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	if share.CreatedAt == 0 {
		share.CreatedAt = time.Now().Unix()
	}

	var group interface{}
	if share.Group != "" {
		group = share.Group
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO checklist_shares (id, created_by, item_group, month, year, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		share.ID, share.CreatedBy, group, share.Month, share.Year, share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checklist share: %w", err)
	}

	return nil
}

// GetChecklistShare retrieves a share record by ID.
func (s *SQLiteStore) GetChecklistShare(ctx context.Context, shareID string) (*models.ChecklistShare, error) {
	share := &models.ChecklistShare{}
	var group sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_by, item_group, month, year, created_at FROM checklist_shares WHERE id = ?",
		shareID,
	).Scan(&share.ID, &share.CreatedBy, &group, &share.Month, &share.Year, &share.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checklist share %s: %w", shareID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist share: %w", err)
	}

	share.Group = group.String
	return share, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

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

// CreateTransaction persists a new transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if tx.CreatedAt == 0 {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, user_id, description, amount, date, month, year,
		  budget_item_id, budget_item_name, category_id, category_name,
		  created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Description, tx.Amount, tx.Date, tx.Month, tx.Year,
		nullable(tx.BudgetItemID), nullable(tx.BudgetItemName),
		nullable(tx.CategoryID), nullable(tx.CategoryName),
		tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, amount, date, month, year,
		        budget_item_id, budget_item_name, category_id, category_name,
		        created_at, updated_at
		 FROM transactions WHERE id = ?`,
		txID,
	)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", txID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// ListTransactions returns the user's transactions, optionally filtered
// to a period, newest date first and most recently created first within
// a date.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, month, year int) ([]models.Transaction, error) {
	query := `SELECT id, user_id, description, amount, date, month, year,
	                 budget_item_id, budget_item_name, category_id, category_name,
	                 created_at, updated_at
	          FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}

	if month != 0 && year != 0 {
		query += " AND month = ? AND year = ?"
		args = append(args, month, year)
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransaction rewrites a transaction record.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET
		   description = ?, amount = ?, date = ?, month = ?, year = ?,
		   budget_item_id = ?, budget_item_name = ?,
		   category_id = ?, category_name = ?,
		   updated_at = ?
		 WHERE id = ?`,
		tx.Description, tx.Amount, tx.Date, tx.Month, tx.Year,
		nullable(tx.BudgetItemID), nullable(tx.BudgetItemName),
		nullable(tx.CategoryID), nullable(tx.CategoryName),
		time.Now().Unix(), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteTransaction removes a transaction by ID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, txID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", txID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s: %w", txID, storage.ErrNotFound)
	}

	return nil
}

// SumTransactionsForItem re-sums the amounts of all transactions linked
// to a budget item. Used by the spent-total repair pass.
func (s *SQLiteStore) SumTransactionsForItem(ctx context.Context, itemID string) (float64, error) {
	var sum float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE budget_item_id = ?",
		itemID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for item: %w", err)
	}

	return sum, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var itemID, itemName, catID, catName sql.NullString

	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Description, &tx.Amount, &tx.Date, &tx.Month, &tx.Year,
		&itemID, &itemName, &catID, &catName,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.BudgetItemID = itemID.String
	tx.BudgetItemName = itemName.String
	tx.CategoryID = catID.String
	tx.CategoryName = catName.String

	return tx, nil
}

// nullable maps empty strings to SQL NULL so optional references stay
// absent instead of empty.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

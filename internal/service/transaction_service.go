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

// TransactionService records expenses and keeps each linked budget
// item's spent total reconciled with them.
//
// Reconciliation is additive: every mutation applies atomic deltas to
// the affected items instead of re-summing their transactions. A delta
// that fails after the transaction record has been written is returned
// as a ReconciliationWarning, never rolled back; the record is the
// source of truth and the total self-heals on the next repair pass.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a new TransactionService with the given
// storage backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// TransactionInput carries the caller-editable fields of a transaction.
type TransactionInput struct {
	Description  string
	Amount       float64
	Date         string // YYYY-MM-DD
	BudgetItemID string
	CategoryID   string
}

// ListTransactions returns the user's transactions, optionally filtered
// to a period, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string, month, year int) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, month, year)
}

// AddTransaction records an expense, deriving its reporting period from
// the date, then increments the linked budget item's spent total by the
// amount. The increment failing does not undo the write; it comes back
// as a ReconciliationWarning next to the created transaction.
func (s *TransactionService) AddTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	slog.Info("AddTransaction request received",
		"user_id", userID, "amount", in.Amount, "budget_item_id", in.BudgetItemID)

	tx, err := s.buildTransaction(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		slog.Error("AddTransaction failed", "user_id", userID, "error", err)
		return nil, err
	}

	var warn error
	if tx.BudgetItemID != "" {
		warn = s.adjustSpent(ctx, tx.BudgetItemID, tx.Amount)
	}

	slog.Info("Transaction created", "transaction_id", tx.ID, "user_id", userID)
	return tx, warn
}

// UpdateTransaction applies an edit by the recording user. The old and
// new budget-item links decide the adjustments:
//
//   - link unchanged, amount changed: one delta of newAmount-oldAmount
//   - link changed: decrement the old item by the old amount and
//     increment the new item by the new amount, each attempted
//     independently so one failing never blocks the other
//
// A caller who is not the recorder gets ErrUnauthorized before any side
// effect.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, txID string, in TransactionInput) (*models.Transaction, error) {
	old, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if old.UserID != userID {
		slog.Warn("UpdateTransaction rejected", "transaction_id", txID, "caller", userID)
		return nil, ErrUnauthorized
	}

	updated, err := s.buildTransaction(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	updated.ID = old.ID
	updated.CreatedAt = old.CreatedAt

	var warns []error
	switch {
	case old.BudgetItemID != updated.BudgetItemID:
		if old.BudgetItemID != "" {
			if w := s.adjustSpent(ctx, old.BudgetItemID, -old.Amount); w != nil {
				warns = append(warns, w)
			}
		}
		if updated.BudgetItemID != "" {
			if w := s.adjustSpent(ctx, updated.BudgetItemID, updated.Amount); w != nil {
				warns = append(warns, w)
			}
		}
	case updated.BudgetItemID != "" && old.Amount != updated.Amount:
		if w := s.adjustSpent(ctx, updated.BudgetItemID, updated.Amount-old.Amount); w != nil {
			warns = append(warns, w)
		}
	}

	if err := s.store.UpdateTransaction(ctx, updated); err != nil {
		slog.Error("UpdateTransaction failed", "transaction_id", txID, "error", err)
		return nil, err
	}

	slog.Info("Transaction updated", "transaction_id", txID, "user_id", userID)
	return updated, errors.Join(warns...)
}

// DeleteTransaction removes a transaction recorded by the caller,
// decrementing the linked item's spent total first.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, txID string) error {
	tx, err := s.store.GetTransaction(ctx, txID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if tx.UserID != userID {
		slog.Warn("DeleteTransaction rejected", "transaction_id", txID, "caller", userID)
		return ErrUnauthorized
	}

	var warn error
	if tx.BudgetItemID != "" {
		warn = s.adjustSpent(ctx, tx.BudgetItemID, -tx.Amount)
	}

	if err := s.store.DeleteTransaction(ctx, txID); err != nil {
		slog.Error("DeleteTransaction failed", "transaction_id", txID, "error", err)
		return err
	}

	slog.Info("Transaction deleted", "transaction_id", txID, "user_id", userID)
	return warn
}

// buildTransaction validates input and resolves the denormalized
// display names for the linked budget item and category.
func (s *TransactionService) buildTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	month, year, err := models.Period(in.Date)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:       userID,
		Description:  in.Description,
		Amount:       in.Amount,
		Date:         in.Date,
		Month:        month,
		Year:         year,
		BudgetItemID: in.BudgetItemID,
		CategoryID:   in.CategoryID,
	}

	// Display names are best effort; a dangling reference still records
	// the expense and surfaces through the spent adjustment instead.
	if in.BudgetItemID != "" {
		if item, err := s.store.GetBudgetItem(ctx, in.BudgetItemID); err == nil {
			tx.BudgetItemName = item.Name
		}
	}
	switch {
	case in.CategoryID == models.SystemUncategorizedID:
		tx.CategoryName = models.SystemUncategorized().Name
	case in.CategoryID != "":
		if cat, err := s.store.GetCategory(ctx, in.CategoryID); err == nil {
			tx.CategoryName = cat.Name
		}
	}

	return tx, nil
}

// adjustSpent applies one atomic delta and converts a failure into a
// logged, counted ReconciliationWarning.
func (s *TransactionService) adjustSpent(ctx context.Context, itemID string, delta float64) error {
	if err := s.store.AdjustItemSpent(ctx, itemID, delta); err != nil {
		slog.Error("spent adjustment failed",
			"budget_item_id", itemID, "delta", delta, "error", err)
		metrics.ReconciliationWarnings.Inc()
		return &ReconciliationWarning{ItemID: itemID, Delta: delta, Cause: err}
	}
	return nil
}

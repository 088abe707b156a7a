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

// SharingService grants collaborators access to a budget and merges any
// conflicting budget the recipient already owns for the same month.
type SharingService struct {
	store storage.Store
}

// NewSharingService creates a new SharingService with the given storage
// backend.
func NewSharingService(store storage.Store) *SharingService {
	return &SharingService{store: store}
}

// ShareResult reports the outcome of a ShareBudget call.
type ShareResult struct {
	MergedItems int            `json:"mergedItems"`
	Recipient   models.Profile `json:"recipient"`
}

// ShareBudget gives the user behind recipientEmail collaborative access
// to the budget:
//
//  1. Resolve the email to a user (ErrRecipientNotFound, ErrSelfShare).
//  2. Load the budget; only the owner may share (ErrNotFound,
//     ErrUnauthorized, ErrAlreadyShared).
//  3. Merge every budget the recipient owns for the same period into the
//     target: items are repointed to the target budget with their ids
//     intact — transaction links reference item ids and are never
//     rewritten — then the emptied budget is deleted. At most one such
//     budget should exist, but the loop tolerates more.
//  4. Add the recipient to the member set (idempotent).
//
// The sequence spans several records without a surrounding transaction.
// A partial failure leaves a recoverable state, and retrying is safe:
// merged budgets are gone on the second pass, so the call proceeds
// straight to the membership add.
func (s *SharingService) ShareBudget(ctx context.Context, ownerID, budgetID, recipientEmail string) (*ShareResult, error) {
	slog.Info("ShareBudget request received",
		"budget_id", budgetID, "owner_id", ownerID)

	recipient, err := s.store.GetUserByEmail(ctx, models.NormalizeEmail(recipientEmail))
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}
	if recipient.ID == ownerID {
		return nil, ErrSelfShare
	}

	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if budget.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	if budget.IsMember(recipient.ID) {
		return nil, ErrAlreadyShared
	}

	// Merge the recipient's own budgets for this period into the target.
	stale, err := s.store.ListBudgetsByOwner(ctx, recipient.ID, budget.Month, budget.Year)
	if err != nil {
		return nil, err
	}

	merged := 0
	for _, old := range stale {
		if old.ID == budget.ID {
			continue
		}

		n, err := s.store.RepointBudgetItems(ctx, old.ID, budget.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to merge budget %s: %w", old.ID, err)
		}
		merged += n

		if err := s.store.DeleteBudget(ctx, old.ID); err != nil {
			return nil, fmt.Errorf("failed to remove merged budget %s: %w", old.ID, err)
		}

		metrics.BudgetMerges.Inc()
		slog.Info("Merged recipient budget",
			"budget_id", budget.ID, "merged_budget_id", old.ID, "items", n)
	}

	if err := s.store.AddBudgetMember(ctx, budget.ID, recipient.ID); err != nil {
		return nil, err
	}

	slog.Info("Budget shared",
		"budget_id", budget.ID, "recipient_id", recipient.ID, "merged_items", merged)

	return &ShareResult{
		MergedItems: merged,
		Recipient:   recipient.PublicProfile(),
	}, nil
}

// UnshareBudget removes a member from the budget. Only the owner may
// call it. Items the removed member created stay on the shared budget —
// unsharing never loses data.
func (s *SharingService) UnshareBudget(ctx context.Context, ownerID, budgetID, targetUserID string) error {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if budget.OwnerID != ownerID {
		return ErrUnauthorized
	}

	if err := s.store.RemoveBudgetMember(ctx, budgetID, targetUserID); err != nil {
		return err
	}

	slog.Info("Budget unshared", "budget_id", budgetID, "removed_user_id", targetUserID)
	return nil
}

// GetSharedMembers returns the owner (flagged) followed by every shared
// member's profile.
func (s *SharingService) GetSharedMembers(ctx context.Context, budgetID string) ([]models.Profile, error) {
	budget, err := s.store.GetBudget(ctx, budgetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(budget.Members)+1)

	owner, err := s.store.GetUserByID(ctx, budget.OwnerID)
	if err != nil {
		return nil, err
	}
	p := owner.PublicProfile()
	p.Owner = true
	profiles = append(profiles, p)

	for _, memberID := range budget.Members {
		member, err := s.store.GetUserByID(ctx, memberID)
		if err != nil {
			// A deleted account leaves a dangling member id; skip it.
			slog.Warn("shared member not found", "budget_id", budgetID, "user_id", memberID)
			continue
		}
		profiles = append(profiles, member.PublicProfile())
	}

	return profiles, nil
}

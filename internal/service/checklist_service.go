package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"budgetbook/internal/live"
	"budgetbook/internal/metrics"
	"budgetbook/internal/models"
	"budgetbook/internal/storage"
)

// ChecklistService manages monthly checklist items, their link-based
// shares, and the live subscriptions that stream both.
//
// Every mutation re-delivers the full, creation-ordered item set to all
// matching subscribers. A share link grants read plus toggle to anyone
// holding it; full capability stays with the creator, enforced here at
// the mutation operations rather than in any client.
type ChecklistService struct {
	store storage.Store
	hub   *live.Hub
}

// NewChecklistService creates a new ChecklistService with the given
// storage backend.
func NewChecklistService(store storage.Store) *ChecklistService {
	return &ChecklistService{store: store, hub: live.NewHub()}
}

// ChecklistItemInput carries the fields for a new checklist item.
type ChecklistItemInput struct {
	Name  string
	Group string // defaults to "general"
	Month int
	Year  int
}

// ChecklistItemUpdate carries a partial edit; nil fields are unchanged.
type ChecklistItemUpdate struct {
	Name      *string
	Group     *string
	Completed *bool
}

// ListChecklistItems returns the user's items for a period in creation
// order.
func (s *ChecklistService) ListChecklistItems(ctx context.Context, userID string, month, year int) ([]models.ChecklistItem, error) {
	return s.store.ListChecklistItems(ctx, userID, month, year, "")
}

// AddChecklistItem creates an item and pushes the new snapshot to
// subscribers.
func (s *ChecklistService) AddChecklistItem(ctx context.Context, userID string, in ChecklistItemInput) (*models.ChecklistItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name required")
	}
	if !models.ValidPeriod(in.Month, in.Year) {
		return nil, fmt.Errorf("invalid period %d/%d", in.Month, in.Year)
	}

	item := &models.ChecklistItem{
		UserID:    userID,
		Group:     in.Group,
		Name:      in.Name,
		Completed: false,
		Month:     in.Month,
		Year:      in.Year,
	}
	if err := s.store.CreateChecklistItem(ctx, item); err != nil {
		slog.Error("AddChecklistItem failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Checklist item created", "item_id", item.ID, "user_id", userID)
	s.notify(item)
	return item, nil
}

// UpdateChecklistItem applies a partial edit to an item the caller owns.
func (s *ChecklistService) UpdateChecklistItem(ctx context.Context, userID, itemID string, in ChecklistItemUpdate) (*models.ChecklistItem, error) {
	item, err := s.store.GetChecklistItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrUnauthorized
	}

	oldGroup := item.Group
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Group != nil && *in.Group != "" {
		item.Group = *in.Group
	}
	if in.Completed != nil {
		item.Completed = *in.Completed
	}

	if err := s.store.UpdateChecklistItem(ctx, item); err != nil {
		slog.Error("UpdateChecklistItem failed", "item_id", itemID, "error", err)
		return nil, err
	}

	s.notify(item)
	if item.Group != oldGroup {
		// Subscribers narrowed to the old group lose the item; they
		// need a fresh snapshot too.
		s.hub.Broadcast(item.UserID, item.Month, item.Year, oldGroup, s.fetch)
	}
	return item, nil
}

// DeleteChecklistItem removes an item the caller owns.
func (s *ChecklistService) DeleteChecklistItem(ctx context.Context, userID, itemID string) error {
	item, err := s.store.GetChecklistItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrUnauthorized
	}

	if err := s.store.DeleteChecklistItem(ctx, itemID); err != nil {
		slog.Error("DeleteChecklistItem failed", "item_id", itemID, "error", err)
		return err
	}

	slog.Info("Checklist item deleted", "item_id", itemID, "user_id", userID)
	s.notify(item)
	return nil
}

// SubscribeChecklist streams the user's items for a period: the current
// snapshot immediately, then again after every matching change, until
// the returned handle is invoked. No delivery happens after cancel
// returns.
func (s *ChecklistService) SubscribeChecklist(ctx context.Context, userID string, month, year int, onUpdate func([]models.ChecklistItem)) (func(), error) {
	return s.subscribe(ctx, live.Filter{OwnerID: userID, Month: month, Year: year}, onUpdate)
}

// CreateChecklistShare creates an immutable share record scoped to a
// group (empty for the entire checklist) and period. The returned id is
// the share link's token.
func (s *ChecklistService) CreateChecklistShare(ctx context.Context, userID, group string, month, year int) (*models.ChecklistShare, error) {
	if !models.ValidPeriod(month, year) {
		return nil, fmt.Errorf("invalid period %d/%d", month, year)
	}

	share := &models.ChecklistShare{
		CreatedBy: userID,
		Group:     group,
		Month:     month,
		Year:      year,
	}
	if err := s.store.CreateChecklistShare(ctx, share); err != nil {
		slog.Error("CreateChecklistShare failed", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("Checklist share created", "share_id", share.ID, "user_id", userID)
	return share, nil
}

// ResolveChecklistShare looks a share up by id.
func (s *ChecklistService) ResolveChecklistShare(ctx context.Context, shareID string) (*models.ChecklistShare, error) {
	share, err := s.store.GetChecklistShare(ctx, shareID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return share, nil
}

// SubscribeSharedChecklist streams the items a share exposes, exactly
// like SubscribeChecklist but scoped by the share record.
func (s *ChecklistService) SubscribeSharedChecklist(ctx context.Context, share *models.ChecklistShare, onUpdate func([]models.ChecklistItem)) (func(), error) {
	filter := live.Filter{
		OwnerID: share.CreatedBy,
		Month:   share.Month,
		Year:    share.Year,
		Group:   share.Group,
	}
	return s.subscribe(ctx, filter, onUpdate)
}

// ToggleSharedItem flips an item's completed flag on behalf of a share
// link holder. This is the only mutation available to viewers who are
// not the owner; the item must fall inside the share's scope.
func (s *ChecklistService) ToggleSharedItem(ctx context.Context, shareID, itemID string) (*models.ChecklistItem, error) {
	share, err := s.ResolveChecklistShare(ctx, shareID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.GetChecklistItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !share.Covers(item) {
		return nil, ErrUnauthorized
	}

	item.Completed = !item.Completed
	if err := s.store.UpdateChecklistItem(ctx, item); err != nil {
		return nil, err
	}

	slog.Info("Shared checklist item toggled",
		"share_id", shareID, "item_id", itemID, "completed", item.Completed)
	s.notify(item)
	return item, nil
}

func (s *ChecklistService) subscribe(ctx context.Context, filter live.Filter, onUpdate func([]models.ChecklistItem)) (func(), error) {
	cancel, err := s.hub.Subscribe(filter, onUpdate, s.fetch)
	if err != nil {
		return nil, err
	}
	metrics.LiveSubscribers.Inc()

	var once sync.Once
	return func() {
		cancel()
		once.Do(metrics.LiveSubscribers.Dec)
	}, nil
}

// fetch loads the snapshot a filter selects; the hub calls it for the
// initial delivery and once per matching subscriber on every broadcast.
func (s *ChecklistService) fetch(f live.Filter) ([]models.ChecklistItem, error) {
	return s.store.ListChecklistItems(context.Background(), f.OwnerID, f.Month, f.Year, f.Group)
}

func (s *ChecklistService) notify(item *models.ChecklistItem) {
	s.hub.Broadcast(item.UserID, item.Month, item.Year, item.Group, s.fetch)
}

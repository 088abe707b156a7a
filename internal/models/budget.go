package models

// Budget is one owner's spending plan for a calendar month.
//
// After sharing, additional users resolve to the same budget for that
// period through the Members list. (Month, Year) never changes after
// creation.
type Budget struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`

	// Members holds the user ids the budget has been shared with.
	// The owner is not repeated here.
	Members []string `json:"sharedWith,omitempty"`

	// Items are the resolved budget items; populated on reads that
	// request them, not persisted on the budget record itself.
	Items []BudgetItem `json:"budgetItems,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// HasAccess reports whether userID may read or mutate this budget:
// the owner always, shared members otherwise. Every access decision for
// budgets and their items goes through this one predicate.
func (b *Budget) HasAccess(userID string) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether userID is in the shared-member list
// (the owner is not a member of their own budget).
func (b *Budget) IsMember(userID string) bool {
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// BudgetItem is a named spending limit inside a budget.
//
// Spent is a denormalized running total maintained by atomic deltas as
// linked transactions change; it equals the sum of linked transaction
// amounts once all adjustments have settled. BudgetID is repointed only
// by the sharing coordinator during a merge, so existing transaction
// links (which reference the item id) survive sharing.
type BudgetItem struct {
	ID       string  `json:"id"`
	BudgetID string  `json:"budgetId"`
	UserID   string  `json:"userId"` // original creator
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"` // limit, >= 0
	Spent    float64 `json:"spent"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

package models

// DefaultChecklistGroup is the group label applied when none is given.
const DefaultChecklistGroup = "general"

// ChecklistItem is one entry on a user's monthly checklist.
// Items are delivered to subscribers in creation order.
type ChecklistItem struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"` // owner
	Group     string `json:"group"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// ChecklistShare is an immutable record granting link holders a scoped
// view of the creator's checklist. Group is empty for "entire checklist".
// Anyone holding the share id may read and toggle completion; only the
// creator retains edit and delete capability.
type ChecklistShare struct {
	ID        string `json:"id"`
	CreatedBy string `json:"createdBy"`
	Group     string `json:"group,omitempty"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	CreatedAt int64  `json:"createdAt"`
}

// Covers reports whether the share's scope includes the given item:
// same owner, same period, and same group unless the share covers the
// whole checklist.
func (s *ChecklistShare) Covers(item *ChecklistItem) bool {
	if item.UserID != s.CreatedBy || item.Month != s.Month || item.Year != s.Year {
		return false
	}
	return s.Group == "" || s.Group == item.Group
}

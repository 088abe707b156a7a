package models

// SystemUncategorizedID is the fixed id of the synthetic "Uncategorized"
// category. It is present in every user's category list, owned by no one,
// and can never be edited or deleted.
const SystemUncategorizedID = "system-uncategorized"

// Category is a user-defined transaction label.
type Category struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`

	// IsSystem marks the synthetic Uncategorized category.
	IsSystem bool `json:"isSystem,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// SystemUncategorized returns the synthetic category injected into every
// category listing.
func SystemUncategorized() Category {
	return Category{
		ID:       SystemUncategorizedID,
		Name:     "Uncategorized",
		IsSystem: true,
	}
}

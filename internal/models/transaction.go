package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used on transactions.
const DateLayout = "2006-01-02"

// Transaction is a recorded expense.
//
// Month and Year are always derived from Date (see Period), never set
// independently, so editing the date moves the transaction between
// reporting periods. BudgetItemID and CategoryID are optional references;
// the *Name fields are denormalized display copies.
type Transaction struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"` // recorder
	Description string  `json:"description"`
	Amount      float64 `json:"amount"` // expense magnitude, > 0
	Date        string  `json:"date"`   // YYYY-MM-DD
	Month       int     `json:"month"`
	Year        int     `json:"year"`

	BudgetItemID   string `json:"budgetItemId,omitempty"`
	BudgetItemName string `json:"budgetItemName,omitempty"`
	CategoryID     string `json:"categoryId,omitempty"`
	CategoryName   string `json:"categoryName,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Period parses a YYYY-MM-DD date and returns its (month, year).
func Period(date string) (month, year int, err error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return int(t.Month()), t.Year(), nil
}

// PreviousPeriod returns the month immediately before (month, year),
// wrapping January back to December of the prior year.
func PreviousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// ValidPeriod reports whether (month, year) names a usable calendar month.
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year > 0
}

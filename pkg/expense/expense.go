package expense

import (
	"errors"
	"time"
)

var Categories = []string{"food", "groceries", "transport", "entertainment", "shopping", "health", "bills", "coffee", "other"}

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCategory = errors.New("unknown expense category")
	ErrMissingDate     = errors.New("expense date is required")
	ErrExpenseNotFound = errors.New("expense not found")
)

// Expense is a single dated spend against a budget. Every write invalidates
// the ledger from the expense's date forward.
type Expense struct {
	ID          int
	BudgetID    int
	Date        time.Time
	AmountCents int
	Category    string
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if e.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if !validCategory(e.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

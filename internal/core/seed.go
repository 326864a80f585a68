package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategories returns the categories a fresh ledger starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Food & Dining", Color: "#FF5A5A", Icon: "utensils"},
		{ID: "2", Name: "Housing & Rent", Color: "#5D5FEF", Icon: "home"},
		{ID: "3", Name: "Transportation", Color: "#3B82F6", Icon: "car"},
		{ID: "4", Name: "Entertainment", Color: "#8B5CF6", Icon: "film"},
		{ID: "5", Name: "Shopping", Color: "#EC4899", Icon: "shopping-bag"},
		{ID: "6", Name: "Utilities", Color: "#F59E0B", Icon: "bolt"},
		{ID: "7", Name: "Healthcare", Color: "#10B981", Icon: "heart-pulse"},
		{ID: "8", Name: "Income", Color: "#4CAF50", Icon: "wallet"},
	}
}

// SampleTransactions returns the demo transactions seeded relative to now,
// newest first.
func SampleTransactions(now time.Time) []Transaction {
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }
	return []Transaction{
		{ID: "1", Amount: decimal.NewFromInt(2500), Type: Income, Category: "8", Date: now, Notes: "Monthly salary"},
		{ID: "2", Amount: decimal.RequireFromString("35.50"), Type: Expense, Category: "1", Date: day(1), Notes: "Dinner at restaurant"},
		{ID: "3", Amount: decimal.NewFromInt(950), Type: Expense, Category: "2", Date: day(2), Notes: "Rent payment"},
		{ID: "4", Amount: decimal.RequireFromString("125.75"), Type: Expense, Category: "5", Date: day(3), Notes: "New clothes"},
		{ID: "5", Amount: decimal.RequireFromString("45.20"), Type: Expense, Category: "3", Date: day(4), Notes: "Gas refill"},
	}
}

package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals are the ledger-wide derived figures.
type Totals struct {
	Income   decimal.Decimal `json:"totalIncome"`
	Expenses decimal.Decimal `json:"totalExpenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// ComputeTotals sums income and expense amounts in a single pass.
func ComputeTotals(txs []Transaction) Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Color  string          `json:"color,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthTrend is the income/expense pair of one calendar month.
type MonthTrend struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"` // 1-12
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// Timeframe selects the analytics window.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// Start returns the beginning of the timeframe ending at now.
func (tf Timeframe) Start(now time.Time) time.Time {
	switch tf {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Analytics is the dashboard read model.
type Analytics struct {
	Timeframe   Timeframe        `json:"timeframe"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Totals      Totals           `json:"totals"`
	SavingsRate decimal.Decimal  `json:"savingsRate"`
	Trend       []MonthTrend     `json:"trend"`
	ByCategory  []CategoryAmount `json:"byCategory"`
}

// BudgetStatus decorates a budget with its consumption percentage.
type BudgetStatus struct {
	Budget
	Percentage decimal.Decimal `json:"percentage"`
	OverBudget bool            `json:"overBudget"`
}

// AlertLevel ranks budget consumption.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertWarning
	AlertExceeded
)

func (l AlertLevel) String() string {
	switch l {
	case AlertWarning:
		return "warning"
	case AlertExceeded:
		return "exceeded"
	}
	return "none"
}

// BudgetAlert is emitted when a budget crosses a consumption threshold.
type BudgetAlert struct {
	BudgetID   string          `json:"budgetId"`
	CategoryID string          `json:"categoryId"`
	Level      string          `json:"level"`
	Spent      decimal.Decimal `json:"spent"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	At         time.Time       `json:"at"`
}

package ledger

import (
	"testing"
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "a", Amount: dec("35.50"), Type: core.Expense, Category: "1", Date: start},
		{ID: "b", Amount: dec("10"), Type: core.Expense, Category: "1", Date: end},
		{ID: "c", Amount: dec("99"), Type: core.Income, Category: "1", Date: start.AddDate(0, 0, 2)},
		{ID: "d", Amount: dec("20"), Type: core.Expense, Category: "2", Date: start.AddDate(0, 0, 2)},
		{ID: "e", Amount: dec("7"), Type: core.Expense, Category: "1", Date: start.AddDate(0, 0, -1)},
		{ID: "f", Amount: dec("8"), Type: core.Expense, Category: "1", Date: start.AddDate(0, 1, 1)},
	}

	tests := []struct {
		name      string
		budget    core.Budget
		spent     string
		remaining string
	}{
		{
			name:      "category with open end spans one month inclusive",
			budget:    core.Budget{ID: "1", CategoryID: "1", Amount: dec("300"), Period: core.Monthly, StartDate: start},
			spent:     "45.50",
			remaining: "254.50",
		},
		{
			name:      "explicit end date bounds the window",
			budget:    core.Budget{ID: "2", CategoryID: "1", Amount: dec("40"), Period: core.Monthly, StartDate: start, EndDate: &end},
			spent:     "45.50",
			remaining: "-5.50",
		},
		{
			name:      "no category counts every expense",
			budget:    core.Budget{ID: "3", Amount: dec("100"), Period: core.Weekly, StartDate: start},
			spent:     "55.50",
			remaining: "44.50",
		},
		{
			name:      "daily window",
			budget:    core.Budget{ID: "4", CategoryID: "1", Amount: dec("50"), Period: core.Daily, StartDate: start},
			spent:     "35.50",
			remaining: "14.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recompute([]core.Budget{tt.budget}, txs)
			assert.Equal(t, tt.spent, got[0].Spent.StringFixed(2))
			assert.Equal(t, tt.remaining, got[0].Remaining.StringFixed(2))
		})
	}
}

func TestRecomputeIsPure(t *testing.T) {
	in := []core.Budget{{ID: "1", Amount: dec("10"), Period: core.Monthly, StartDate: time.Now()}}
	out := Recompute(in, nil)
	assert.True(t, in[0].Spent.IsZero())
	assert.True(t, out[0].Remaining.Equal(decimal.NewFromInt(10)))
	assert.Nil(t, Recompute(nil, nil))
}

func TestLevel(t *testing.T) {
	warn := decimal.NewFromInt(80)
	tests := []struct {
		spent string
		want  core.AlertLevel
	}{
		{"0", core.AlertNone},
		{"79.99", core.AlertNone},
		{"80", core.AlertWarning},
		{"100", core.AlertWarning},
		{"100.01", core.AlertExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			b := core.Budget{Amount: dec("100"), Spent: dec(tt.spent)}
			assert.Equal(t, tt.want, Level(Status(b), warn))
		})
	}
}

func TestStatusZeroAmount(t *testing.T) {
	s := Status(core.Budget{Amount: decimal.Zero, Spent: dec("5")})
	assert.True(t, s.Percentage.IsZero())
	assert.True(t, s.OverBudget)
}

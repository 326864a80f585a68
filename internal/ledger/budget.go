package ledger

import (
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
)

// Recompute returns a copy of budgets with Spent and Remaining derived from
// txs. A budget counts expense transactions in its category, or every
// expense when it has no category, dated within its inclusive window.
func Recompute(budgets []core.Budget, txs []core.Transaction) []core.Budget {
	if budgets == nil {
		return nil
	}
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		b.Spent = Spent(b, txs)
		b.Remaining = b.Amount.Sub(b.Spent)
		out[i] = b
	}
	return out
}

// Spent sums the expenses that count against b.
func Spent(b core.Budget, txs []core.Transaction) decimal.Decimal {
	from, to := b.Window()
	total := decimal.Zero
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if b.CategoryID != "" && t.Category != b.CategoryID {
			continue
		}
		if !withinInclusive(t.Date, from, to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// Status adds the consumption percentage to a computed budget.
func Status(b core.Budget) core.BudgetStatus {
	return core.BudgetStatus{
		Budget:     b,
		Percentage: core.Percentage(b.Spent, b.Amount),
		OverBudget: b.Spent.GreaterThan(b.Amount),
	}
}

// Level classifies a budget status against the warning threshold percent.
func Level(s core.BudgetStatus, warnPercent decimal.Decimal) core.AlertLevel {
	switch {
	case s.OverBudget:
		return core.AlertExceeded
	case s.Percentage.GreaterThanOrEqual(warnPercent):
		return core.AlertWarning
	}
	return core.AlertNone
}

func withinInclusive(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

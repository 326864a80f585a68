package ledger

import (
	"sort"
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
)

// trendMonths is how many calendar months the income/expense trend covers.
const trendMonths = 6

// Analytics builds the dashboard read model for the timeframe ending at now.
func (m *Manager) Analytics(tf core.Timeframe, now time.Time) core.Analytics {
	return BuildAnalytics(m.Snapshot(), tf, now)
}

// BuildAnalytics is the pure form of Manager.Analytics.
func BuildAnalytics(s State, tf core.Timeframe, now time.Time) core.Analytics {
	switch tf {
	case core.TimeframeWeek, core.TimeframeMonth, core.TimeframeYear:
	default:
		tf = core.TimeframeMonth
	}
	from := tf.Start(now)
	window := FilterByDate(s.Transactions, &from, &now)
	totals := core.ComputeTotals(window)

	return core.Analytics{
		Timeframe:   tf,
		From:        from,
		To:          now,
		Totals:      totals,
		SavingsRate: core.Percentage(totals.Balance, totals.Income),
		Trend:       monthlyTrend(s.Transactions, now),
		ByCategory:  expensesByCategory(window, s.Categories),
	}
}

func monthlyTrend(txs []core.Transaction, now time.Time) []core.MonthTrend {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]core.MonthTrend, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		month := first.AddDate(0, -i, 0)
		mt := core.MonthTrend{
			Year:     month.Year(),
			Month:    int(month.Month()),
			Label:    month.Format("Jan"),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		for _, t := range txs {
			d := t.Date.In(now.Location())
			if d.Year() != mt.Year || int(d.Month()) != mt.Month {
				continue
			}
			if t.Type == core.Income {
				mt.Income = mt.Income.Add(t.Amount)
			} else {
				mt.Expenses = mt.Expenses.Add(t.Amount)
			}
		}
		out = append(out, mt)
	}
	return out
}

func expensesByCategory(txs []core.Transaction, cats []core.Category) []core.CategoryAmount {
	byID := map[string]decimal.Decimal{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		byID[t.Category] = byID[t.Category].Add(t.Amount)
	}

	colors := map[string]string{}
	for _, c := range cats {
		colors[c.ID] = c.Color
	}

	merged := map[string]*core.CategoryAmount{}
	for id, amount := range byID {
		if amount.IsZero() {
			continue
		}
		name := CategoryName(cats, id)
		if ca, ok := merged[name]; ok {
			ca.Amount = ca.Amount.Add(amount)
			continue
		}
		merged[name] = &core.CategoryAmount{Name: name, Color: colors[id], Amount: amount}
	}

	out := make([]core.CategoryAmount, 0, len(merged))
	for _, ca := range merged {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

package ledger

import (
	"time"

	"smartspend/internal/core"
)

// FilterByDate keeps transactions dated within [start, end]. A nil bound is
// open; with both bounds nil the input is returned as a copy.
func FilterByDate(txs []core.Transaction, start, end *time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if start != nil && t.Date.Before(*start) {
			continue
		}
		if end != nil && t.Date.After(*end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterByCategory keeps transactions whose category equals categoryID exactly.
func FilterByCategory(txs []core.Transaction, categoryID string) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.Category == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// FilterRecurring keeps the recurring templates.
func FilterRecurring(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.IsRecurring {
			out = append(out, t)
		}
	}
	return out
}

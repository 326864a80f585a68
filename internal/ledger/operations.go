package ledger

import (
	"context"
	"time"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
)

// AddTransaction assigns a new id and prepends the transaction. Validation
// is the caller's job. On a save failure the returned transaction is still
// part of the in-memory ledger.
func (m *Manager) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = m.ids.NewID()
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		s.Transactions = append([]core.Transaction{t}, s.Transactions...)
		return []Event{{Type: EventTransactionCreated, EntityID: t.ID, Payload: t}}, nil
	})
	return t, err
}

// EditTransaction replaces the transaction with the same id. It reports
// false without writing anything when no transaction matches.
func (m *Manager) EditTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Transactions {
			if s.Transactions[i].ID == t.ID {
				s.Transactions[i] = t
				found = true
				return []Event{{Type: EventTransactionUpdated, EntityID: t.ID, Payload: t}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// DeleteTransaction removes the transaction with id, if any.
func (m *Manager) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Transactions {
			if s.Transactions[i].ID == id {
				s.Transactions = append(s.Transactions[:i], s.Transactions[i+1:]...)
				found = true
				return []Event{{Type: EventTransactionDeleted, EntityID: id}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// AddCategory appends a category with a fresh id.
func (m *Manager) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = m.ids.NewID()
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		s.Categories = append(s.Categories, c)
		return []Event{{Type: EventCategoryCreated, EntityID: c.ID, Payload: c}}, nil
	})
	return c, err
}

func (m *Manager) EditCategory(ctx context.Context, c core.Category) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Categories {
			if s.Categories[i].ID == c.ID {
				s.Categories[i] = c
				found = true
				return []Event{{Type: EventCategoryUpdated, EntityID: c.ID, Payload: c}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// DeleteCategory removes the category only. Transactions and budgets that
// reference it keep the dangling id.
func (m *Manager) DeleteCategory(ctx context.Context, id string) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Categories {
			if s.Categories[i].ID == id {
				s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
				found = true
				return []Event{{Type: EventCategoryDeleted, EntityID: id}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// AddBudget stores a budget with a fresh id and its derived figures filled in.
func (m *Manager) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = m.ids.NewID()
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		s.Budgets = append(s.Budgets, b)
		return []Event{{Type: EventBudgetCreated, EntityID: b.ID}}, nil
	})
	if stored, ok := m.Budget(b.ID); ok {
		b = stored
	}
	return b, err
}

// EditBudget replaces the budget with the same id and recomputes its figures.
func (m *Manager) EditBudget(ctx context.Context, b core.Budget) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Budgets {
			if s.Budgets[i].ID == b.ID {
				s.Budgets[i] = b
				found = true
				return []Event{{Type: EventBudgetUpdated, EntityID: b.ID}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

func (m *Manager) DeleteBudget(ctx context.Context, id string) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Budgets {
			if s.Budgets[i].ID == id {
				s.Budgets = append(s.Budgets[:i], s.Budgets[i+1:]...)
				found = true
				return []Event{{Type: EventBudgetDeleted, EntityID: id}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// AddReport records report metadata. Newest reports come first.
func (m *Manager) AddReport(ctx context.Context, r core.Report) (core.Report, error) {
	r.ID = m.ids.NewID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		s.Reports = append([]core.Report{r}, s.Reports...)
		return []Event{{Type: EventReportGenerated, EntityID: r.ID, Payload: r}}, nil
	})
	return r, err
}

func (m *Manager) DeleteReport(ctx context.Context, id string) (bool, error) {
	found := false
	err := m.Update(ctx, func(s *State) ([]Event, error) {
		for i := range s.Reports {
			if s.Reports[i].ID == id {
				s.Reports = append(s.Reports[:i], s.Reports[i+1:]...)
				found = true
				return []Event{{Type: EventReportDeleted, EntityID: id}}, nil
			}
		}
		return nil, nil
	})
	return found, err
}

// Transaction looks up a transaction by id.
func (m *Manager) Transaction(id string) (core.Transaction, bool) {
	for _, t := range m.Transactions() {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

func (m *Manager) Category(id string) (core.Category, bool) {
	for _, c := range m.Categories() {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (m *Manager) Budget(id string) (core.Budget, bool) {
	for _, b := range m.Budgets() {
		if b.ID == id {
			return b, true
		}
	}
	return core.Budget{}, false
}

func (m *Manager) Report(id string) (core.Report, bool) {
	for _, r := range m.Reports() {
		if r.ID == id {
			return r, true
		}
	}
	return core.Report{}, false
}

// CategoryName resolves a category id to its display name, or "Unknown".
func (m *Manager) CategoryName(id string) string {
	return CategoryName(m.Categories(), id)
}

// CategoryName resolves id within cats, or "Unknown" when it is dangling.
func CategoryName(cats []core.Category, id string) string {
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}

// Totals computes income, expenses and balance from the current transactions.
func (m *Manager) Totals() core.Totals {
	return core.ComputeTotals(m.Transactions())
}

func (m *Manager) TotalIncome() decimal.Decimal   { return m.Totals().Income }
func (m *Manager) TotalExpenses() decimal.Decimal { return m.Totals().Expenses }
func (m *Manager) Balance() decimal.Decimal       { return m.Totals().Balance }

// FilterTransactionsByDate returns transactions within the inclusive bounds.
func (m *Manager) FilterTransactionsByDate(start, end *time.Time) []core.Transaction {
	return FilterByDate(m.Transactions(), start, end)
}

// FilterTransactionsByCategory returns transactions in categoryID.
func (m *Manager) FilterTransactionsByCategory(categoryID string) []core.Transaction {
	return FilterByCategory(m.Transactions(), categoryID)
}

// RecurringTransactions returns the recurring templates.
func (m *Manager) RecurringTransactions() []core.Transaction {
	return FilterRecurring(m.Transactions())
}

// BudgetStatuses returns every budget with its consumption percentage.
func (m *Manager) BudgetStatuses() []core.BudgetStatus {
	budgets := m.Budgets()
	out := make([]core.BudgetStatus, len(budgets))
	for i, b := range budgets {
		out[i] = Status(b)
	}
	return out
}

// BudgetStatus returns the status of one budget.
func (m *Manager) BudgetStatus(id string) (core.BudgetStatus, bool) {
	b, ok := m.Budget(id)
	if !ok {
		return core.BudgetStatus{}, false
	}
	return Status(b), true
}

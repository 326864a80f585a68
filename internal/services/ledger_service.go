package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

var ErrNotFound = errors.New("not found")

// LedgerService validates user input before it reaches the ledger and
// enforces the rules the ledger itself leaves to callers: default categories
// are read-only and unknown ids are reported instead of ignored.
type LedgerService struct {
	ledger *ledger.Manager
}

func NewLedgerService(l *ledger.Manager) *LedgerService {
	return &LedgerService{ledger: l}
}

// Ledger exposes the underlying manager for read access.
func (s *LedgerService) Ledger() *ledger.Manager {
	return s.ledger
}

// CreateTransaction validates and stores a transaction. A recurring
// transaction without a next occurrence is scheduled one period after its date.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Notes = strings.TrimSpace(t.Notes)
	prepareRecurring(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.ledger.AddTransaction(ctx, t)
	if err != nil {
		return created, fmt.Errorf("save transaction: %w", err)
	}
	return created, nil
}

// UpdateTransaction replaces an existing transaction. A recurring edit that
// omits the next occurrence keeps the stored schedule, which the recurring
// processor may already have advanced.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	t.Notes = strings.TrimSpace(t.Notes)
	if t.IsRecurring && t.NextOccurrence == nil {
		if stored, ok := s.ledger.Transaction(t.ID); ok && stored.IsRecurring && stored.NextOccurrence != nil {
			next := *stored.NextOccurrence
			t.NextOccurrence = &next
		}
	}
	prepareRecurring(&t)
	if err := t.Validate(); err != nil {
		return err
	}
	found, err := s.ledger.EditTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	if !found {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	found, err := s.ledger.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !found {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.ledger.AddCategory(ctx, c)
	if err != nil {
		return created, fmt.Errorf("save category: %w", err)
	}
	return created, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) error {
	if c.IsDefault() {
		return fmt.Errorf("category %s: %w", c.ID, core.ErrDefaultCategory)
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}
	found, err := s.ledger.EditCategory(ctx, c)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	if !found {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a user category. Transactions keep the stale id.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	if core.IsDefaultCategoryID(id) {
		return fmt.Errorf("category %s: %w", id, core.ErrDefaultCategory)
	}
	found, err := s.ledger.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !found {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created, err := s.ledger.AddBudget(ctx, b)
	if err != nil {
		return created, fmt.Errorf("save budget: %w", err)
	}
	return created, nil
}

func (s *LedgerService) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	found, err := s.ledger.EditBudget(ctx, b)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	if !found {
		return fmt.Errorf("budget %s: %w", b.ID, ErrNotFound)
	}
	return nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	found, err := s.ledger.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if !found {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return nil
}

func prepareRecurring(t *core.Transaction) {
	if !t.IsRecurring {
		t.RecurringPeriod = ""
		t.NextOccurrence = nil
		return
	}
	if t.RecurringPeriod == "" {
		t.RecurringPeriod = core.Monthly
	}
	if t.NextOccurrence == nil && t.RecurringPeriod.Valid() && !t.Date.IsZero() {
		next := core.AdvancePeriod(t.Date, t.RecurringPeriod)
		t.NextOccurrence = &next
	}
}

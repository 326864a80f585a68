package services

import (
	"context"
	"testing"

	"smartspend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)

	_, err := svc.CreateTransaction(ctx, core.Transaction{Amount: dec("-3"), Type: core.Expense, Category: "1", Date: testNow})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	tx, err := svc.CreateTransaction(ctx, core.Transaction{
		Amount: dec("950"), Type: core.Expense, Category: "2", Date: testNow, Notes: "  Rent  ", IsRecurring: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent", tx.Notes)
	assert.Equal(t, core.Monthly, tx.RecurringPeriod)
	require.NotNil(t, tx.NextOccurrence)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *tx.NextOccurrence)
}

func TestLedgerService_NonRecurringDropsSchedule(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)

	tx, err := svc.CreateTransaction(ctx, core.Transaction{
		Amount: dec("1"), Type: core.Expense, Category: "1", Date: testNow,
		RecurringPeriod: core.Weekly, NextOccurrence: ptr(testNow),
	})
	require.NoError(t, err)
	assert.Empty(t, tx.RecurringPeriod)
	assert.Nil(t, tx.NextOccurrence)
}

func TestLedgerService_UpdateKeepsAdvancedSchedule(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)
	proc := NewRecurringProcessor(m, CatchUpAll)

	tmpl, err := svc.CreateTransaction(ctx, core.Transaction{
		Amount: dec("15.99"), Type: core.Expense, Category: "4", Notes: "Streaming",
		Date: testNow.AddDate(0, -3, 0), IsRecurring: true, RecurringPeriod: core.Monthly,
	})
	require.NoError(t, err)

	created, err := proc.ProcessDue(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	stored, ok := m.Transaction(tmpl.ID)
	require.True(t, ok)
	require.NotNil(t, stored.NextOccurrence)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *stored.NextOccurrence)

	stored.Notes = "Streaming plan"
	stored.NextOccurrence = nil
	require.NoError(t, svc.UpdateTransaction(ctx, stored))

	edited, ok := m.Transaction(tmpl.ID)
	require.True(t, ok)
	assert.Equal(t, "Streaming plan", edited.Notes)
	require.NotNil(t, edited.NextOccurrence)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *edited.NextOccurrence)

	created, err = proc.ProcessDue(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, created)

	// An explicit next occurrence still wins.
	explicit := testNow.AddDate(0, 0, 3)
	edited.NextOccurrence = &explicit
	require.NoError(t, svc.UpdateTransaction(ctx, edited))
	edited, _ = m.Transaction(tmpl.ID)
	assert.Equal(t, explicit, *edited.NextOccurrence)
}

func TestLedgerService_NotFound(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)

	err := svc.UpdateTransaction(ctx, core.Transaction{ID: "x", Amount: dec("1"), Type: core.Expense, Category: "1", Date: testNow})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, "x"), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteBudget(ctx, "x"), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "x"), ErrNotFound)
}

func TestLedgerService_DefaultCategoriesAreReadOnly(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, "1"), core.ErrDefaultCategory)
	assert.ErrorIs(t, svc.UpdateCategory(ctx, core.Category{ID: "8", Name: "Salary"}), core.ErrDefaultCategory)
	assert.Len(t, m.Categories(), 8)

	c, err := svc.CreateCategory(ctx, core.Category{Name: " Pets ", Color: "#123456", Icon: "paw"})
	require.NoError(t, err)
	assert.Equal(t, "Pets", c.Name)

	c.Name = ""
	assert.ErrorIs(t, svc.UpdateCategory(ctx, c), core.ErrEmptyName)
	assert.NoError(t, svc.DeleteCategory(ctx, c.ID))
}

func TestLedgerService_Budgets(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewLedgerService(m)

	_, err := svc.CreateBudget(ctx, core.Budget{Amount: dec("0"), Period: core.Monthly, StartDate: testNow})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	b, err := svc.CreateBudget(ctx, core.Budget{CategoryID: "1", Amount: dec("300"), Period: core.Monthly, StartDate: core.Midnight(testNow).AddDate(0, 0, -3)})
	require.NoError(t, err)
	assert.Equal(t, "264.50", b.Remaining.StringFixed(2))

	b.Period = "hourly"
	assert.ErrorIs(t, svc.UpdateBudget(ctx, b), core.ErrInvalidPeriod)
}

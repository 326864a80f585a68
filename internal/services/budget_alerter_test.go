package services

import (
	"context"
	"errors"
	"testing"

	"smartspend/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	alerts []core.BudgetAlert
	err    error
}

func (r *recordingPublisher) PublishAlert(_ context.Context, a core.BudgetAlert) error {
	r.alerts = append(r.alerts, a)
	return r.err
}

func TestBudgetAlerter_RaisesOncePerLevel(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	pub := &recordingPublisher{}
	alerter := NewBudgetAlerter(m, pub, decimal.Zero)

	b, err := m.AddBudget(ctx, core.Budget{CategoryID: "1", Amount: dec("40"), Period: core.Monthly, StartDate: core.Midnight(testNow).AddDate(0, 0, -7)})
	require.NoError(t, err)

	// 35.50 of 40 is 88.75%: warning.
	alerts := alerter.Check(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, "warning", alerts[0].Level)
	assert.Equal(t, b.ID, alerts[0].BudgetID)
	assert.Equal(t, "88.75", alerts[0].Percentage.StringFixed(2))
	assert.Equal(t, testNow, alerts[0].At)

	assert.Empty(t, alerter.Check(ctx), "same level is not reported twice")

	_, err = m.AddTransaction(ctx, core.Transaction{Amount: dec("10"), Type: core.Expense, Category: "1", Date: testNow})
	require.NoError(t, err)
	alerts = alerter.Check(ctx)
	require.Len(t, alerts, 1)
	assert.Equal(t, "exceeded", alerts[0].Level)

	require.Len(t, pub.alerts, 2)
}

func TestBudgetAlerter_ResetsWhenLevelDrops(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	alerter := NewBudgetAlerter(m, nil, decimal.NewFromInt(80))

	b, err := m.AddBudget(ctx, core.Budget{CategoryID: "1", Amount: dec("40"), Period: core.Monthly, StartDate: core.Midnight(testNow).AddDate(0, 0, -7)})
	require.NoError(t, err)
	require.Len(t, alerter.Check(ctx), 1)

	b.Amount = dec("1000")
	_, err = m.EditBudget(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, alerter.Check(ctx))

	b.Amount = dec("40")
	_, err = m.EditBudget(ctx, b)
	require.NoError(t, err)
	assert.Len(t, alerter.Check(ctx), 1, "budget can alert again after recovering")
}

func TestBudgetAlerter_AsEventSink(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	alerter := NewBudgetAlerter(m, pub, decimal.Zero)
	m.AddSink(alerter)

	_, err := m.AddBudget(ctx, core.Budget{CategoryID: "2", Amount: dec("900"), Period: core.Monthly, StartDate: core.Midnight(testNow).AddDate(0, 0, -7)})
	require.NoError(t, err)
	require.Len(t, pub.alerts, 1, "budget creation triggers evaluation")
	assert.Equal(t, "exceeded", pub.alerts[0].Level)

	_, err = m.AddTransaction(ctx, core.Transaction{Amount: dec("1"), Type: core.Income, Category: "8", Date: testNow})
	require.NoError(t, err)
	assert.Len(t, pub.alerts, 1, "publisher errors are logged, not retried")
}

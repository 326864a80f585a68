package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/storage"
	"smartspend/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *ledger.Manager) {
	t.Helper()
	return newTestAppWithStore(t, memory.New())
}

func newTestAppWithStore(t *testing.T, store ledger.StateStore) (*app, *ledger.Manager) {
	t.Helper()
	l := ledger.New(store, ledger.WithClock(func() time.Time { return testNow }))
	require.NoError(t, l.Load(context.Background()))
	a := &app{
		open: func(context.Context) (*workspace, error) {
			return &workspace{ledger: l, store: store, release: func() {}}, nil
		},
		now: func() time.Time { return testNow },
		loc: time.UTC,
	}
	return a, l
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSummary(t *testing.T) {
	a, _ := newTestApp(t)
	out, err := execute(t, a, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "2500.00")
	assert.Contains(t, out, "1156.45")
	assert.Contains(t, out, "1343.55")
}

func TestTransactions(t *testing.T) {
	a, _ := newTestApp(t)

	out, err := execute(t, a, "transactions", "--start", "2025-06-16", "--end", "2025-06-17")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[1], "Food & Dining")
	assert.Contains(t, lines[2], "Rent payment")

	out, err = execute(t, a, "tx", "--recurring")
	require.NoError(t, err)
	assert.Equal(t, "No transactions found.\n", out)

	_, err = execute(t, a, "transactions", "--start", "June")
	assert.ErrorContains(t, err, "--start")
}

func TestBudgets(t *testing.T) {
	a, l := newTestApp(t)

	out, err := execute(t, a, "budgets")
	require.NoError(t, err)
	assert.Equal(t, "No budgets defined.\n", out)

	_, err = l.AddBudget(context.Background(), core.Budget{
		CategoryID: "1",
		Amount:     decimal.NewFromInt(40),
		Period:     core.Monthly,
		StartDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	out, err = execute(t, a, "budgets")
	require.NoError(t, err)
	assert.Contains(t, out, "Food & Dining")
	assert.Contains(t, out, "88.8%")
	assert.Contains(t, out, "warning")
}

func TestRecurring(t *testing.T) {
	a, l := newTestApp(t)
	next := time.Date(2025, 4, 18, 0, 0, 0, 0, time.UTC)
	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Amount:          decimal.NewFromInt(10),
		Type:            core.Expense,
		Category:        "4",
		Date:            time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
		IsRecurring:     true,
		RecurringPeriod: core.Monthly,
		NextOccurrence:  &next,
	})
	require.NoError(t, err)

	out, err := execute(t, a, "recurring", "--catch-up", "all")
	require.NoError(t, err)
	assert.Equal(t, "Created 3 transaction(s) (policy all).\n", out)

	_, err = execute(t, a, "recurring", "--catch-up", "sometimes")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	a, l := newTestApp(t)

	out, err := execute(t, a, "export", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Date,Type,Category,Amount,Notes\n"))
	assert.Len(t, l.Reports(), 1)

	dir := t.TempDir()
	out, err = execute(t, a, "export", "--period", "yearly", "-o", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "smartspend-yearly-report-2025-06-18.csv")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 6)

	_, err = execute(t, a, "export", "--period", "daily")
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)
}

func TestHistoryAndRestore(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	a, l := newTestAppWithStore(t, store)
	_, err = l.AddTransaction(ctx, core.Transaction{
		Amount: decimal.NewFromInt(200), Type: core.Expense, Category: "6", Date: testNow, Notes: "Concert",
	})
	require.NoError(t, err)

	out, err := execute(t, a, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[0], "REVISION")
	assert.Contains(t, lines[1], "1143.55")
	assert.Contains(t, lines[2], "1343.55")

	revs, err := store.History(ctx, ledger.StorageKey, 0)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	seed := revs[1]

	out, err = execute(t, a, "restore", fmt.Sprint(seed.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "5 transaction(s), balance 1343.55")
	assert.Len(t, l.Transactions(), 5)

	out, err = execute(t, a, "history", "-n", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = execute(t, a, "restore", "latest")
	assert.ErrorContains(t, err, "must be a number")
	_, err = execute(t, a, "restore", "999")
	assert.ErrorContains(t, err, "not found")
}

func TestHistoryNeedsSQLite(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := execute(t, a, "history")
	assert.ErrorIs(t, err, errNoHistory)
}

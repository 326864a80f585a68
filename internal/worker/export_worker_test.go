package worker

import (
	"context"
	"testing"
	"time"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/services"
	sheetsmem "smartspend/internal/sheets/memory"
	"smartspend/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workerNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T, store *memory.Store, prefix string) *ledger.Manager {
	t.Helper()
	n := 0
	m := ledger.New(store,
		ledger.WithClock(func() time.Time { return workerNow }),
		ledger.WithIDGenerator(ledger.IDFunc(func() string {
			n++
			return prefix + string(rune('a'+n))
		})))
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestExportWorker_ExportsReportFromSharedStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	// API side records the report.
	api := newManager(t, store, "api-")
	report, err := api.AddReport(ctx, core.Report{
		Name:   "Monthly Report - Jun 18, 2025",
		Type:   core.ReportScopeAll,
		Period: core.Monthly,
		Format: core.FormatCSV,
	})
	require.NoError(t, err)

	// Worker side has a separate in-memory copy and must reload.
	wl := newManager(t, store, "wrk-")
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, services.NewReportService(wl, sheet, time.UTC), sheet)

	msg, err := amqp.NewLedgerEventMessage(ledger.EventReportGenerated, report.ID, workerNow, report)
	require.NoError(t, err)
	require.NoError(t, w.HandleMessage(ctx, msg))

	rows := sheet.Sheet(report.Name)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Date", "Type", "Category", "Amount", "Notes"}, rows[0])
	assert.Len(t, rows, 1+len(ledger.FilterByDate(wl.Transactions(), ptrTime(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), &workerNow)))
}

func TestExportWorker_MissingReportIsSkipped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	wl := newManager(t, store, "wrk-")
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, services.NewReportService(wl, sheet, time.UTC), sheet)

	msg, err := amqp.NewLedgerEventMessage(ledger.EventReportGenerated, "gone", workerNow, nil)
	require.NoError(t, err)
	assert.NoError(t, w.HandleMessage(ctx, msg))
}

func TestExportWorker_ReloadNeverWritesSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	wl := ledger.New(store, ledger.WithClock(func() time.Time { return workerNow }))
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, services.NewReportService(wl, sheet, time.UTC), sheet)

	msg, err := amqp.NewLedgerEventMessage(ledger.EventReportGenerated, "early", workerNow, nil)
	require.NoError(t, err)
	require.NoError(t, w.HandleMessage(ctx, msg))
	assert.Equal(t, 0, store.Saves())
}

func TestExportWorker_AppendsAlerts(t *testing.T) {
	ctx := context.Background()
	wl := newManager(t, memory.New(), "wrk-")
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, nil, sheet)

	alert := core.BudgetAlert{
		BudgetID:   "b1",
		CategoryID: "1",
		Level:      core.AlertExceeded.String(),
		Spent:      decimal.RequireFromString("120"),
		Amount:     decimal.RequireFromString("100"),
		Percentage: decimal.RequireFromString("120"),
		At:         workerNow,
	}
	msg, err := amqp.NewLedgerEventMessage(ledger.EventBudgetAlert, alert.BudgetID, workerNow, alert)
	require.NoError(t, err)
	require.NoError(t, w.HandleMessage(ctx, msg))

	got := sheet.Alerts()
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].BudgetID)
	assert.Equal(t, "exceeded", got[0].Level)
	assert.True(t, got[0].Spent.Equal(alert.Spent))
}

func TestExportWorker_BadAlertPayloadIsDropped(t *testing.T) {
	wl := newManager(t, memory.New(), "wrk-")
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, nil, sheet)

	msg := &amqp.LedgerEventMessage{Type: ledger.EventBudgetAlert, EntityID: "b1", Payload: []byte(`"nope"`)}
	assert.NoError(t, w.HandleMessage(context.Background(), msg))
	assert.Empty(t, sheet.Alerts())
}

func TestExportWorker_IgnoresOtherEvents(t *testing.T) {
	wl := newManager(t, memory.New(), "wrk-")
	sheet := sheetsmem.New()
	w := NewExportWorker(wl, nil, sheet)

	msg := &amqp.LedgerEventMessage{Type: ledger.EventTransactionCreated, EntityID: "x"}
	assert.NoError(t, w.HandleMessage(context.Background(), msg))
	assert.Empty(t, sheet.Alerts())
}

func ptrTime(t time.Time) *time.Time { return &t }

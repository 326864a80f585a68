package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"smartspend/internal/core"
	sheetsmem "smartspend/internal/sheets/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportCSV(t *testing.T) {
	rows := []ReportRow{
		{Date: "6/18/2025", Type: "expense", Category: "Food & Dining", Amount: "35.50", Notes: `Dinner at "Luigi's"`},
		{Date: "6/17/2025", Type: "income", Category: "Income, misc", Amount: "2500.00", Notes: ""},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, rows))

	want := "Date,Type,Category,Amount,Notes\n" +
		"6/18/2025,expense,Food & Dining,35.50,\"Dinner at \"\"Luigi's\"\"\"\n" +
		"6/17/2025,income,\"Income, misc\",2500.00,\"\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteReportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, nil))
	assert.Equal(t, "Date,Type,Category,Amount,Notes\n", buf.String())
}

func TestBuildReportRows(t *testing.T) {
	txs := []core.Transaction{
		{Amount: dec("45.2"), Type: core.Expense, Category: "3", Date: time.Date(2025, 6, 5, 23, 0, 0, 0, time.UTC), Notes: "Gas"},
		{Amount: dec("7"), Type: core.Expense, Category: "deleted", Date: time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)},
	}
	rows := BuildReportRows(txs, core.DefaultCategories(), time.UTC)
	require.Len(t, rows, 2)
	assert.Equal(t, ReportRow{Date: "6/5/2025", Type: "expense", Category: "Transportation", Amount: "45.20", Notes: "Gas"}, rows[0])
	assert.Equal(t, "12/25/2025", rows[1].Date)
	assert.Equal(t, "Unknown", rows[1].Category)
}

func TestGenerate_CSVWeekly(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	sheet := sheetsmem.New()
	svc := NewReportService(m, sheet, time.UTC)

	out, err := svc.Generate(ctx, core.FormatCSV, core.Weekly, testNow)
	require.NoError(t, err)

	// Week starts Sunday June 15: seed rows from June 15 to 18 fall inside.
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), out.From)
	assert.Equal(t, 4, out.Rows)
	assert.Equal(t, "smartspend-weekly-report-2025-06-18.csv", out.Filename)
	assert.False(t, out.Pending)

	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Type,Category,Amount,Notes", lines[0])
	assert.Equal(t, `6/18/2025,income,Income,2500.00,"Monthly salary"`, lines[1])
	assert.Equal(t, `6/15/2025,expense,Shopping,125.75,"New clothes"`, lines[4])

	reports := m.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "Weekly Report - Jun 18, 2025", reports[0].Name)
	assert.Equal(t, core.ReportScopeAll, reports[0].Type)
	assert.Equal(t, core.FormatCSV, reports[0].Format)

	exported := sheet.Sheet(reports[0].Name)
	require.Len(t, exported, 5)
	assert.Equal(t, "Monthly salary", exported[1][4])
}

func TestGenerate_PDFIsPlaceholder(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewReportService(m, nil, time.UTC)

	out, err := svc.Generate(ctx, core.FormatPDF, core.Monthly, testNow)
	require.NoError(t, err)
	assert.True(t, out.Pending)
	assert.Empty(t, out.Data)
	assert.NotEmpty(t, out.Message)
	assert.Len(t, m.Reports(), 1, "the entry is still recorded")
}

func TestGenerate_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewReportService(m, nil, time.UTC)

	_, err := svc.Generate(ctx, "xlsx", core.Monthly, testNow)
	assert.ErrorIs(t, err, core.ErrInvalidFormat)

	_, err = svc.Generate(ctx, core.FormatCSV, core.Daily, testNow)
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)

	assert.Empty(t, m.Reports())
}

func TestRegenerateAndDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestLedger(t)
	svc := NewReportService(m, nil, time.UTC)

	first, err := svc.Generate(ctx, core.FormatCSV, core.Yearly, testNow)
	require.NoError(t, err)

	again, err := svc.Regenerate(ctx, first.Report.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, first.Data, again.Data)
	assert.Len(t, m.Reports(), 1, "regenerating does not add an entry")

	_, err = svc.Regenerate(ctx, "missing", testNow)
	assert.ErrorIs(t, err, ErrReportNotFound)

	ok, err := svc.Delete(ctx, first.Report.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.Reports())
}

package memory

import (
	"context"
	"testing"

	"smartspend/internal/core"
)

func TestAppendReport(t *testing.T) {
	s := New()
	ctx := context.Background()
	header := []string{"Date", "Type", "Category", "Amount", "Notes"}

	ref, err := s.AppendReport(ctx, "Monthly", header, [][]string{{"6/1/2025", "expense", "Food & Dining", "35.50", "Dinner"}})
	if err != nil {
		t.Fatalf("AppendReport: %v", err)
	}
	if ref != "mem:Monthly!A2:E2" {
		t.Fatalf("unexpected ref %q", ref)
	}

	if _, err := s.AppendReport(ctx, "Monthly", header, [][]string{{"6/2/2025", "income", "Income", "10.00", ""}}); err != nil {
		t.Fatalf("AppendReport: %v", err)
	}
	rows := s.Sheet("Monthly")
	if len(rows) != 3 {
		t.Fatalf("expected header written once plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" {
		t.Fatalf("expected header first, got %v", rows[0])
	}
}

func TestAppendReportRequiresSheetName(t *testing.T) {
	if _, err := New().AppendReport(context.Background(), " ", nil, nil); err == nil {
		t.Fatal("expected error for empty sheet name")
	}
}

func TestAppendAlert(t *testing.T) {
	s := New()
	if err := s.AppendAlert(context.Background(), core.BudgetAlert{BudgetID: "b1", Level: "warning"}); err != nil {
		t.Fatalf("AppendAlert: %v", err)
	}
	if got := s.Alerts(); len(got) != 1 || got[0].BudgetID != "b1" {
		t.Fatalf("unexpected alerts %v", got)
	}
}

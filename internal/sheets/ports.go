package sheets

import (
	"context"

	"smartspend/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends a rendered report to a spreadsheet tab.
	ReportWriter interface {
		// AppendReport writes header and rows to the named sheet and returns
		// the updated range reference.
		AppendReport(ctx context.Context, sheetName string, header []string, rows [][]string) (rangeRef string, err error)
	}

	// AlertWriter keeps a log of budget alerts in a spreadsheet.
	AlertWriter interface {
		AppendAlert(ctx context.Context, alert core.BudgetAlert) error
	}
)

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/services"
	"smartspend/internal/sheets"
)

// ExportWorker mirrors ledger activity into a spreadsheet. It consumes the
// events the API process publishes, reloads the shared ledger snapshot and
// appends generated reports and budget alerts.
type ExportWorker struct {
	ledger  *ledger.Manager
	reports *services.ReportService
	alerts  sheets.AlertWriter
}

func NewExportWorker(l *ledger.Manager, reports *services.ReportService, alerts sheets.AlertWriter) *ExportWorker {
	return &ExportWorker{
		ledger:  l,
		reports: reports,
		alerts:  alerts,
	}
}

// HandleMessage processes a single ledger event message from AMQP
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	switch msg.Type {
	case ledger.EventReportGenerated:
		return w.handleReport(ctx, msg)
	case ledger.EventBudgetAlert:
		return w.handleAlert(ctx, msg)
	default:
		slog.DebugContext(ctx, "Ignoring ledger event", "type", msg.Type, "entity_id", msg.EntityID)
		return nil
	}
}

func (w *ExportWorker) handleReport(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if w.reports == nil {
		slog.WarnContext(ctx, "No report exporter configured, skipping", "report_id", msg.EntityID)
		return nil
	}

	// The API process owns the ledger; pick up its latest snapshot first.
	if err := w.ledger.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}

	at := msg.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	out, err := w.reports.Regenerate(ctx, msg.EntityID, at)
	if errors.Is(err, services.ErrReportNotFound) {
		// Deleted before we got to it; nothing to export.
		slog.InfoContext(ctx, "Report no longer exists, skipping export", "report_id", msg.EntityID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("export report %s: %w", msg.EntityID, err)
	}

	slog.InfoContext(ctx, "Report exported",
		"report_id", msg.EntityID,
		"rows", out.Rows,
		"pending", out.Pending)
	return nil
}

func (w *ExportWorker) handleAlert(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if w.alerts == nil {
		return nil
	}
	var alert core.BudgetAlert
	if err := msg.DecodePayload(&alert); err != nil {
		// A malformed payload will never succeed; drop it.
		slog.ErrorContext(ctx, "Invalid budget alert payload", "budget_id", msg.EntityID, "error", err)
		return nil
	}
	if err := w.alerts.AppendAlert(ctx, alert); err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	slog.InfoContext(ctx, "Budget alert exported",
		"budget_id", alert.BudgetID,
		"level", alert.Level)
	return nil
}

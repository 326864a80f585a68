package main

import (
	"context"
	"errors"
	"os"
	"time"

	"smartspend/internal/cli"
	applog "smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/sheets"
	"smartspend/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting smartspend-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg, cli.BackendOptions{
		RequireAMQP:  true,
		EnableSheets: true,
	})
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	var (
		reportWriter sheets.ReportWriter
		alertWriter  sheets.AlertWriter
	)
	if res.Exporter != nil {
		reportWriter, alertWriter = res.Exporter, res.Exporter
		logger.Info("Spreadsheet export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Spreadsheet export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	l := cli.ReloadLedger(context.Background(), logger, res.Store)
	reports := services.NewReportService(l, reportWriter, time.Local)
	exporter := worker.NewExportWorker(l, reports, alertWriter)

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)

	logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
	if err := res.AMQP.ConsumeEvents(ctx, exporter.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		res.Cleanup()
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}

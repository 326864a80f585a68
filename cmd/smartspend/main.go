package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartspend/internal/cache"
	"smartspend/internal/cli"
	apphttp "smartspend/internal/http"
	"smartspend/internal/ledger"
	applog "smartspend/internal/log"
	"smartspend/internal/services"
	"smartspend/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)
	logger.Info("Starting smartspend", "backend", cfg.DataBackend, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg, cli.BackendOptions{})
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	var opts []ledger.Option
	var alertPublisher services.AlertPublisher
	if res.Publisher != nil {
		opts = append(opts, ledger.WithSinks(res.Publisher))
		alertPublisher = res.Publisher
		logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled, ledger events stay in process")
	}
	l := cli.LoadLedger(ctx, logger, res.Store, opts...)

	policy, _ := services.ParseCatchUpPolicy(cfg.RecurringCatchUp)
	recurring := services.NewRecurringProcessor(l, policy)
	alerter := services.NewBudgetAlerter(l, alertPublisher, cfg.BudgetWarningPercent)
	l.AddSink(alerter)

	// Reports render on demand here; spreadsheet export belongs to the worker.
	reports := services.NewReportService(l, nil, time.Local)

	analytics := cache.NewAnalyticsCache(64, 10*time.Minute)
	cacheManager := cache.NewManager()
	cacheManager.Register(analytics)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:            services.NewLedgerService(l),
		Reports:           reports,
		Recurring:         recurring,
		Analytics:         analytics,
		Ready:             res.Store.Ping,
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})
	scheduler := worker.NewScheduler(recurring, alerter, worker.SchedulerConfig{
		RecurringInterval: cfg.RecurringInterval,
		AlertInterval:     cfg.AlertInterval,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		cacheManager.StartCleanup(gctx, 5*time.Minute)
		<-gctx.Done()
		cacheManager.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

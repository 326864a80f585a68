package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"smartspend/internal/cli"
	"smartspend/internal/ledger"
	applog "smartspend/internal/log"
	"smartspend/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	var once bool
	cmd := &cobra.Command{
		Use:           "recurring-worker",
		Short:         "Materialize due recurring transactions on a schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "process due transactions once and exit")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(once bool) error {
	cfg, logger := cli.Bootstrap(applog.ComponentRecurring)
	logger.Info("Starting recurring-worker", "once", once)

	res := cli.InitBackend(context.Background(), logger, cfg, cli.BackendOptions{})
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	var opts []ledger.Option
	if res.Publisher != nil {
		opts = append(opts, ledger.WithSinks(res.Publisher))
		logger.Info("AMQP client initialized, materialized transactions will be published")
	}
	l := cli.LoadLedger(context.Background(), logger, res.Store, opts...)

	policy, _ := services.ParseCatchUpPolicy(cfg.RecurringCatchUp)
	processor := services.NewRecurringProcessor(l, policy)

	if once {
		count, err := processor.ProcessDue(context.Background(), time.Now())
		if err != nil {
			return fmt.Errorf("process recurring transactions: %w", err)
		}
		logger.Info("Processing complete", "transactions_created", count)
		return nil
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, nil)
	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"policy", policy,
		"backend", cfg.DataBackend)

	process := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", "error", err)
			return
		}
		logger.Info("Recurring processing complete",
			"transactions_created", count,
			"next_check", now.Add(cfg.RecurringInterval).Format(time.RFC3339))
	}

	process(time.Now())
	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			return nil
		case now := <-ticker.C:
			process(now)
		}
	}
}

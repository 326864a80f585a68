package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartspend/internal/cli"
	"smartspend/internal/config"
	"smartspend/internal/ledger"
	applog "smartspend/internal/log"
	"smartspend/internal/storage"

	"github.com/spf13/cobra"
)

// workspace is the loaded ledger together with the store behind it.
type workspace struct {
	ledger  *ledger.Manager
	store   ledger.StateStore
	release func()
}

// opener loads the workspace a command works on.
type opener func(ctx context.Context) (*workspace, error)

// app carries what every subcommand needs.
type app struct {
	open opener
	now  func() time.Time
	loc  *time.Location
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and maintain a SmartSpend ledger",
		Long:          `ledgerctl reads the ledger configured by DATA_BACKEND and SQLITE_DB_PATH and runs maintenance tasks against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(summaryCmd(a))
	root.AddCommand(transactionsCmd(a))
	root.AddCommand(budgetsCmd(a))
	root.AddCommand(recurringCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(historyCmd(a))
	root.AddCommand(restoreCmd(a))
	return root
}

// openConfigured opens the ledger from environment configuration. Logs go to
// stderr so command output stays clean.
func openConfigured(ctx context.Context) (*workspace, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{Level: lvl, Format: cfg.LogFormat, Component: "ledgerctl", Output: os.Stderr})
	applog.SetDefault(logger)

	// The CLI never needs the broker: AMQP stays off even when configured.
	cfg.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, cfg, cli.BackendOptions{})
	l := ledger.New(res.Store)
	if err := l.Load(ctx); err != nil {
		res.Cleanup()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &workspace{
		ledger: l,
		store:  res.Store,
		release: func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		},
	}, nil
}

func (a *app) withLedger(cmd *cobra.Command, fn func(l *ledger.Manager, out io.Writer) error) error {
	ws, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.release()
	return fn(ws.ledger, cmd.OutOrStdout())
}

// historyStore is implemented by stores that keep earlier snapshots.
type historyStore interface {
	History(ctx context.Context, key string, limit int) ([]storage.Revision, error)
	Revision(ctx context.Context, id int64) (storage.Revision, error)
}

var errNoHistory = errors.New("snapshot history needs DATA_BACKEND=sqlite")

func (a *app) withHistory(cmd *cobra.Command, fn func(ws *workspace, h historyStore, out io.Writer) error) error {
	ws, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.release()
	h, ok := ws.store.(historyStore)
	if !ok {
		return errNoHistory
	}
	return fn(ws, h, cmd.OutOrStdout())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(&app{open: openConfigured, now: time.Now, loc: time.Local}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

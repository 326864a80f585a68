package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/services"

	"github.com/spf13/cobra"
)

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show total income, expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *ledger.Manager, out io.Writer) error {
				t := l.Totals()
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Income\t%s\n", core.FormatAmount(t.Income))
				fmt.Fprintf(w, "Expenses\t%s\n", core.FormatAmount(t.Expenses))
				fmt.Fprintf(w, "Balance\t%s\n", core.FormatAmount(t.Balance))
				return w.Flush()
			})
		},
	}
}

func transactionsCmd(a *app) *cobra.Command {
	var start, end, category string
	var recurringOnly bool

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDay(start, a.loc)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			to, err := parseDay(end, a.loc)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			if to != nil {
				eod := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
				to = &eod
			}

			return a.withLedger(cmd, func(l *ledger.Manager, out io.Writer) error {
				snap := l.Snapshot()
				txs := ledger.FilterByDate(snap.Transactions, from, to)
				if category != "" {
					txs = ledger.FilterByCategory(txs, category)
				}
				if recurringOnly {
					txs = ledger.FilterRecurring(txs)
				}
				if len(txs) == 0 {
					fmt.Fprintln(out, "No transactions found.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tNOTES")
				for _, t := range txs {
					notes := t.Notes
					if t.IsRecurring {
						notes = fmt.Sprintf("%s [%s]", notes, t.RecurringPeriod)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						t.Date.In(a.loc).Format("2006-01-02"),
						t.Type,
						ledger.CategoryName(snap.Categories, t.Category),
						core.FormatAmount(t.Amount),
						notes)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "latest date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	cmd.Flags().BoolVar(&recurringOnly, "recurring", false, "only recurring templates")
	return cmd
}

func budgetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "Show budget consumption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *ledger.Manager, out io.Writer) error {
				statuses := l.BudgetStatuses()
				if len(statuses) == 0 {
					fmt.Fprintln(out, "No budgets defined.")
					return nil
				}
				cats := l.Categories()
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "CATEGORY\tPERIOD\tBUDGET\tSPENT\tREMAINING\tUSED\tLEVEL")
				for _, s := range statuses {
					name := "All"
					if s.CategoryID != "" {
						name = ledger.CategoryName(cats, s.CategoryID)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s%%\t%s\n",
						name,
						s.Period,
						core.FormatAmount(s.Amount),
						core.FormatAmount(s.Spent),
						core.FormatAmount(s.Remaining),
						s.Percentage.StringFixed(1),
						ledger.Level(s, services.DefaultWarningPercent))
				}
				return w.Flush()
			})
		},
	}
}

func recurringCmd(a *app) *cobra.Command {
	var catchUp string
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Materialize due recurring transactions now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := services.ParseCatchUpPolicy(catchUp)
			if err != nil {
				return err
			}
			return a.withLedger(cmd, func(l *ledger.Manager, out io.Writer) error {
				n, err := services.NewRecurringProcessor(l, policy).ProcessDue(cmd.Context(), a.now())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created %d transaction(s) (policy %s).\n", n, policy)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&catchUp, "catch-up", "single", "catch-up policy: single or all")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var period, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV report for the current period",
		Long: `Record a report for the weekly, monthly or yearly window containing today
and write it as CSV. The file name defaults to the generated report name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *ledger.Manager, out io.Writer) error {
				reports := services.NewReportService(l, nil, a.loc)
				g, err := reports.Generate(cmd.Context(), core.FormatCSV, core.RepetitionTypes(period), a.now())
				if err != nil {
					return err
				}
				if output == "-" {
					_, err := out.Write(g.Data)
					return err
				}
				path := output
				if path == "" {
					path = g.Filename
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, g.Filename)
				}
				if err := os.WriteFile(path, g.Data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(out, "Wrote %d row(s) to %s\n", g.Rows, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "monthly", "report window: weekly, monthly or yearly")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory, - for stdout")
	return cmd
}

func parseDay(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

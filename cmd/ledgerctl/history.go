package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
	"smartspend/internal/storage"

	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved ledger snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHistory(cmd, func(_ *workspace, h historyStore, out io.Writer) error {
				revs, err := h.History(cmd.Context(), ledger.StorageKey, limit)
				if err != nil {
					return err
				}
				if len(revs) == 0 {
					fmt.Fprintln(out, "No snapshots saved.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "REVISION\tSAVED\tTRANSACTIONS\tBUDGETS\tBALANCE")
				for _, r := range revs {
					saved := r.SavedAt.In(a.loc).Format("2006-01-02 15:04:05")
					st, err := ledger.DecodeSnapshot(r.Value)
					if err != nil {
						fmt.Fprintf(w, "%d\t%s\t-\t-\tunreadable\n", r.ID, saved)
						continue
					}
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
						r.ID,
						saved,
						len(st.Transactions),
						len(st.Budgets),
						core.FormatAmount(core.ComputeTotals(st.Transactions).Balance))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of snapshots to show (default: all retained)")
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore REVISION",
		Short: "Make a saved snapshot the current ledger",
		Long: `Replace the ledger with a snapshot listed by "ledgerctl history". The
restored state is saved as a new revision, so the state it replaced stays in
the history and a restore can be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("revision must be a number, got %q", args[0])
			}
			return a.withHistory(cmd, func(ws *workspace, h historyStore, out io.Writer) error {
				rev, err := h.Revision(cmd.Context(), id)
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("revision %d not found", id)
				}
				if err != nil {
					return err
				}
				if rev.Key != ledger.StorageKey {
					return fmt.Errorf("revision %d belongs to %q, not the ledger", id, rev.Key)
				}
				if err := ws.ledger.Restore(cmd.Context(), rev.Value); err != nil {
					return err
				}
				fmt.Fprintf(out, "Restored revision %d: %d transaction(s), balance %s.\n",
					id, len(ws.ledger.Transactions()), core.FormatAmount(ws.ledger.Balance()))
				return nil
			})
		},
	}
}

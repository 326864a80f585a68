package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// CatchUpPolicy decides how many copies a scan materializes when a recurring
// transaction has missed more than one period.
type CatchUpPolicy string

const (
	// CatchUpSingle creates one copy dated today and advances the schedule
	// by exactly one period, however many periods have elapsed.
	CatchUpSingle CatchUpPolicy = "single"
	// CatchUpAll creates one copy per elapsed occurrence, each dated at its
	// scheduled time, and advances the schedule past today.
	CatchUpAll CatchUpPolicy = "all"
)

// maxCatchUp bounds the copies CatchUpAll creates per template in one scan.
const maxCatchUp = 400

// RecurringSuffix is appended to the notes of materialized copies.
const RecurringSuffix = "(Recurring)"

// ParseCatchUpPolicy parses a policy name; empty means CatchUpSingle.
func ParseCatchUpPolicy(s string) (CatchUpPolicy, error) {
	switch CatchUpPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CatchUpSingle:
		return CatchUpSingle, nil
	case CatchUpAll:
		return CatchUpAll, nil
	}
	return "", fmt.Errorf("unknown catch-up policy %q", s)
}

// RecurringProcessor materializes due recurring transactions
type RecurringProcessor struct {
	ledger *ledger.Manager
	policy CatchUpPolicy
}

// NewRecurringProcessor creates a processor with the given catch-up policy
func NewRecurringProcessor(l *ledger.Manager, policy CatchUpPolicy) *RecurringProcessor {
	if policy == "" {
		policy = CatchUpSingle
	}
	return &RecurringProcessor{
		ledger: l,
		policy: policy,
	}
}

// Policy returns the configured catch-up policy.
func (p *RecurringProcessor) Policy() CatchUpPolicy {
	return p.policy
}

// ProcessDue scans recurring transactions and materializes those whose next
// occurrence falls on or before now's date. All copies and schedule advances
// of one scan are committed as a single ledger update. It returns the number
// of transactions created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	created := 0
	err := p.ledger.Update(ctx, func(s *ledger.State) ([]ledger.Event, error) {
		var copies []core.Transaction
		var events []ledger.Event
		checked := 0

		for i := range s.Transactions {
			tmpl := &s.Transactions[i]
			if !tmpl.IsRecurring || tmpl.NextOccurrence == nil {
				continue
			}
			checked++
			if !IsDue(*tmpl.NextOccurrence, now) {
				continue
			}

			stepper, err := GetPeriodStepper(tmpl.RecurringPeriod)
			if err != nil {
				slog.ErrorContext(ctx, "Skipping recurring transaction with unknown period",
					"id", tmpl.ID,
					"period", tmpl.RecurringPeriod,
					"error", err)
				continue
			}

			made := p.materialize(ctx, tmpl, stepper, now)
			for _, c := range made {
				events = append(events, ledger.Event{
					Type:     ledger.EventRecurringApplied,
					EntityID: c.ID,
					Payload:  c,
				})
			}
			copies = append(copies, made...)

			slog.InfoContext(ctx, "Materialized recurring transaction",
				"template_id", tmpl.ID,
				"copies", len(made),
				"amount", tmpl.Amount.StringFixed(2),
				"frequency", tmpl.RecurringPeriod,
				"next_occurrence", tmpl.NextOccurrence.Format("2006-01-02"))
		}

		slog.InfoContext(ctx, "Recurring transaction processing complete",
			"processed", len(copies),
			"total_checked", checked,
			"policy", p.policy,
			"processing_date", now.Format("2006-01-02"))

		if len(copies) == 0 {
			return nil, nil
		}
		// Newest first, matching how single additions are prepended.
		reversed := make([]core.Transaction, 0, len(copies)+len(s.Transactions))
		for i := len(copies) - 1; i >= 0; i-- {
			reversed = append(reversed, copies[i])
		}
		s.Transactions = append(reversed, s.Transactions...)
		created = len(copies)
		return events, nil
	})
	if err != nil {
		return created, fmt.Errorf("apply recurring transactions: %w", err)
	}
	return created, nil
}

// materialize creates the copies for one due template and advances its
// schedule in place.
func (p *RecurringProcessor) materialize(ctx context.Context, tmpl *core.Transaction, stepper PeriodStepper, now time.Time) []core.Transaction {
	next := *tmpl.NextOccurrence

	if p.policy != CatchUpAll {
		advanced := stepper.Next(next)
		tmpl.NextOccurrence = &advanced
		return []core.Transaction{p.copyOf(*tmpl, now)}
	}

	var out []core.Transaction
	for IsDue(next, now) {
		if len(out) == maxCatchUp {
			slog.WarnContext(ctx, "Catch-up limit reached, remaining occurrences deferred to next scan",
				"template_id", tmpl.ID,
				"limit", maxCatchUp)
			break
		}
		out = append(out, p.copyOf(*tmpl, next))
		next = stepper.Next(next)
	}
	tmpl.NextOccurrence = &next
	return out
}

func (p *RecurringProcessor) copyOf(tmpl core.Transaction, date time.Time) core.Transaction {
	return core.Transaction{
		ID:       p.ledger.NewID(),
		Amount:   tmpl.Amount,
		Type:     tmpl.Type,
		Category: tmpl.Category,
		Date:     date,
		Notes:    annotate(tmpl.Notes),
	}
}

func annotate(notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return RecurringSuffix
	}
	return notes + " " + RecurringSuffix
}

package services

import (
	"context"
	"log/slog"
	"sync"

	"smartspend/internal/core"
	"smartspend/internal/ledger"

	"github.com/shopspring/decimal"
)

// DefaultWarningPercent is the consumption level that triggers a warning.
var DefaultWarningPercent = decimal.NewFromInt(80)

// AlertPublisher receives alerts in addition to the log.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert core.BudgetAlert) error
}

// BudgetAlerter watches budget consumption. An alert fires when a budget's
// level rises above the last level reported for it; a level that falls is
// forgotten so the budget can alert again later.
type BudgetAlerter struct {
	ledger    *ledger.Manager
	publisher AlertPublisher
	warnAt    decimal.Decimal

	mu       sync.Mutex
	reported map[string]core.AlertLevel
}

func NewBudgetAlerter(l *ledger.Manager, publisher AlertPublisher, warnPercent decimal.Decimal) *BudgetAlerter {
	if !warnPercent.IsPositive() {
		warnPercent = DefaultWarningPercent
	}
	return &BudgetAlerter{
		ledger:    l,
		publisher: publisher,
		warnAt:    warnPercent,
		reported:  map[string]core.AlertLevel{},
	}
}

// Check evaluates every budget and returns the alerts newly raised.
func (a *BudgetAlerter) Check(ctx context.Context) []core.BudgetAlert {
	statuses := a.ledger.BudgetStatuses()
	now := a.ledger.Now()

	a.mu.Lock()
	var alerts []core.BudgetAlert
	seen := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		seen[s.ID] = struct{}{}
		level := ledger.Level(s, a.warnAt)
		prev := a.reported[s.ID]
		if level <= prev {
			if level < prev {
				a.reported[s.ID] = level
			}
			continue
		}
		a.reported[s.ID] = level
		alerts = append(alerts, core.BudgetAlert{
			BudgetID:   s.ID,
			CategoryID: s.CategoryID,
			Level:      level.String(),
			Spent:      s.Spent,
			Amount:     s.Amount,
			Percentage: s.Percentage.Round(2),
			At:         now,
		})
	}
	for id := range a.reported {
		if _, ok := seen[id]; !ok {
			delete(a.reported, id)
		}
	}
	a.mu.Unlock()

	for _, alert := range alerts {
		slog.WarnContext(ctx, "Budget threshold crossed",
			"budget_id", alert.BudgetID,
			"category", a.ledger.CategoryName(alert.CategoryID),
			"level", alert.Level,
			"spent", alert.Spent.StringFixed(2),
			"amount", alert.Amount.StringFixed(2),
			"percentage", alert.Percentage.StringFixed(2))
		if a.publisher == nil {
			continue
		}
		if err := a.publisher.PublishAlert(ctx, alert); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"budget_id", alert.BudgetID,
				"error", err)
		}
	}
	return alerts
}

// HandleEvent re-checks budgets after transaction changes.
func (a *BudgetAlerter) HandleEvent(ctx context.Context, e ledger.Event) {
	if e.AffectsTransactions() || e.Type == ledger.EventBudgetCreated || e.Type == ledger.EventBudgetUpdated {
		a.Check(ctx)
	}
}

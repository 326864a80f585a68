package ledger

import (
	"context"
	"time"
)

const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
	EventRecurringApplied   = "transaction.recurring_applied"
	EventCategoryCreated    = "category.created"
	EventCategoryUpdated    = "category.updated"
	EventCategoryDeleted    = "category.deleted"
	EventBudgetCreated      = "budget.created"
	EventBudgetUpdated      = "budget.updated"
	EventBudgetDeleted      = "budget.deleted"
	EventBudgetAlert        = "budget.alert"
	EventReportGenerated    = "report.generated"
	EventReportDeleted      = "report.deleted"
)

// Event describes a committed ledger change.
type Event struct {
	Type      string    `json:"type"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// AffectsTransactions reports whether the event changed transaction data.
func (e Event) AffectsTransactions() bool {
	switch e.Type {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted, EventRecurringApplied:
		return true
	}
	return false
}

// EventSink receives events after they are persisted. Sinks run outside the
// ledger lock and may call back into the Manager.
type EventSink interface {
	HandleEvent(ctx context.Context, e Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, e Event)

func (f EventSinkFunc) HandleEvent(ctx context.Context, e Event) { f(ctx, e) }

package adapters

import (
	"context"
	"log/slog"
	"time"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/ledger"
)

// EventPublisher is the subset of the AMQP client used to forward events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// AMQPPublisher forwards committed ledger events and budget alerts to the
// message broker. It implements ledger.EventSink and services.AlertPublisher.
//
// Publishing is best effort: the ledger change is already persisted when the
// sink runs, so failures are logged and dropped.
type AMQPPublisher struct {
	client  EventPublisher
	timeout time.Duration
}

func NewAMQPPublisher(client EventPublisher) *AMQPPublisher {
	return &AMQPPublisher{
		client:  client,
		timeout: 5 * time.Second,
	}
}

// HandleEvent implements ledger.EventSink
func (p *AMQPPublisher) HandleEvent(ctx context.Context, e ledger.Event) {
	if err := p.publish(ctx, e.Type, e.EntityID, e.Timestamp, e.Payload); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", e.Type,
			"entity_id", e.EntityID,
			"error", err)
	}
}

// PublishAlert implements services.AlertPublisher
func (p *AMQPPublisher) PublishAlert(ctx context.Context, alert core.BudgetAlert) error {
	return p.publish(ctx, ledger.EventBudgetAlert, alert.BudgetID, alert.At, alert)
}

func (p *AMQPPublisher) publish(ctx context.Context, eventType, entityID string, ts time.Time, payload any) error {
	msg, err := amqp.NewLedgerEventMessage(eventType, entityID, ts, payload)
	if err != nil {
		return err
	}
	// Detach from request cancellation so a finished HTTP request does not
	// abort the publish.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.client.PublishEvent(pubCtx, msg); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Ledger event published", "type", eventType, "entity_id", entityID)
	return nil
}

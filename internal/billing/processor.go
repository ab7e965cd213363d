package billing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/store"
)

// SubscriptionStore is the persistence surface the processor writes through.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub store.Subscription) error
	UpdateStatusBySubscriptionID(ctx context.Context, subscriptionID, status string) error
}

// Processor applies verified webhook events to subscription state.
type Processor struct {
	subs   SubscriptionStore
	logger *forgeErrors.Logger
}

// NewProcessor constructs a Processor.
func NewProcessor(subs SubscriptionStore, logger *forgeErrors.Logger) *Processor {
	return &Processor{subs: subs, logger: logger}
}

// Process applies one event. Unknown event names are acknowledged and
// logged so the gateway does not retry them forever.
func (p *Processor) Process(ctx context.Context, event Event) error {
	tracer := otel.Tracer("billing")
	ctx, span := tracer.Start(ctx, "billing.process")
	defer span.End()
	span.SetAttributes(attribute.String("billing.event", event.Name))

	switch event.Name {
	case EventOrderPaid:
		return p.applyOrderPaid(ctx, event)
	case EventSubscriptionActivated, EventSubscriptionCharged:
		return p.applySubscriptionUpdate(ctx, event, store.SubscriptionStatusActive)
	case EventSubscriptionCancelled:
		return p.applySubscriptionUpdate(ctx, event, store.SubscriptionStatusCancelled)
	case EventSubscriptionCompleted:
		return p.applySubscriptionUpdate(ctx, event, store.SubscriptionStatusCompleted)
	default:
		p.logger.Warn("ignoring unknown webhook event", "event", event.Name)
		return nil
	}
}

func (p *Processor) applyOrderPaid(ctx context.Context, event Event) error {
	order := event.Payload.Order
	if order == nil || order.ID == "" {
		return forgeErrors.NewValidationError(forgeErrors.ErrCodeInvalidRequest,
			"order.paid event missing order payload", nil)
	}

	sub := store.Subscription{
		OrderID:       order.ID,
		PlanID:        order.PlanID,
		CustomerEmail: order.CustomerEmail,
		Status:        store.SubscriptionStatusActive,
	}
	if err := p.subs.Upsert(ctx, sub); err != nil {
		return forgeErrors.NewStorageError(forgeErrors.ErrCodeStorageFailed,
			"failed to record paid order", err)
	}

	p.logger.Info("recorded paid order", "orderId", order.ID, "planId", order.PlanID)
	return nil
}

func (p *Processor) applySubscriptionUpdate(ctx context.Context, event Event, status string) error {
	entity := event.Payload.Subscription
	if entity == nil || entity.ID == "" {
		return forgeErrors.NewValidationError(forgeErrors.ErrCodeInvalidRequest,
			"subscription event missing subscription payload", nil)
	}

	// Activation carries the full entity; later lifecycle events may only
	// carry the subscription id, so upsert when we can and fall back to a
	// status update keyed by subscription id.
	if entity.OrderID != "" {
		sub := store.Subscription{
			OrderID:        entity.OrderID,
			SubscriptionID: entity.ID,
			PlanID:         entity.PlanID,
			CustomerEmail:  entity.CustomerEmail,
			Status:         status,
		}
		if err := p.subs.Upsert(ctx, sub); err != nil {
			return forgeErrors.NewStorageError(forgeErrors.ErrCodeStorageFailed,
				"failed to record subscription event", err)
		}
	} else {
		err := p.subs.UpdateStatusBySubscriptionID(ctx, entity.ID, status)
		if err != nil {
			return forgeErrors.NewStorageError(forgeErrors.ErrCodeStorageFailed,
				"failed to update subscription status", err)
		}
	}

	p.logger.Info("applied subscription event",
		"event", event.Name, "subscriptionId", entity.ID, "status", status)
	return nil
}

package billing

import (
	"context"
	"errors"
	"testing"

	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/store"
)

type fakeSubscriptionStore struct {
	upserts       []store.Subscription
	statusUpdates map[string]string
	err           error
}

func (f *fakeSubscriptionStore) Upsert(_ context.Context, sub store.Subscription) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, sub)
	return nil
}

func (f *fakeSubscriptionStore) UpdateStatusBySubscriptionID(_ context.Context, subscriptionID, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.statusUpdates == nil {
		f.statusUpdates = map[string]string{}
	}
	f.statusUpdates[subscriptionID] = status
	return nil
}

func newTestProcessor(subs SubscriptionStore) *Processor {
	logger, _ := forgeErrors.New("debug")
	return NewProcessor(subs, logger)
}

func TestProcessOrderPaid(t *testing.T) {
	subs := &fakeSubscriptionStore{}
	p := newTestProcessor(subs)

	event := Event{
		Name: EventOrderPaid,
		Payload: EventPayload{Order: &OrderEntity{
			ID: "order_1", PlanID: "plan_premium", CustomerEmail: "ada@example.com",
		}},
	}
	if err := p.Process(context.Background(), event); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(subs.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(subs.upserts))
	}
	got := subs.upserts[0]
	if got.OrderID != "order_1" || got.Status != store.SubscriptionStatusActive {
		t.Errorf("unexpected upsert: %+v", got)
	}
}

func TestProcessSubscriptionLifecycle(t *testing.T) {
	tests := []struct {
		event      string
		wantStatus string
	}{
		{EventSubscriptionActivated, store.SubscriptionStatusActive},
		{EventSubscriptionCharged, store.SubscriptionStatusActive},
		{EventSubscriptionCancelled, store.SubscriptionStatusCancelled},
		{EventSubscriptionCompleted, store.SubscriptionStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			subs := &fakeSubscriptionStore{}
			p := newTestProcessor(subs)

			event := Event{
				Name: tt.event,
				Payload: EventPayload{Subscription: &SubscriptionEntity{
					ID: "sub_1", OrderID: "order_1", PlanID: "plan_premium",
				}},
			}
			if err := p.Process(context.Background(), event); err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if len(subs.upserts) != 1 || subs.upserts[0].Status != tt.wantStatus {
				t.Errorf("expected upsert with status %q, got %+v", tt.wantStatus, subs.upserts)
			}
		})
	}
}

func TestProcessStatusOnlyEvent(t *testing.T) {
	subs := &fakeSubscriptionStore{}
	p := newTestProcessor(subs)

	// Cancellation without an order id falls back to a status update.
	event := Event{
		Name:    EventSubscriptionCancelled,
		Payload: EventPayload{Subscription: &SubscriptionEntity{ID: "sub_9"}},
	}
	if err := p.Process(context.Background(), event); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(subs.upserts) != 0 {
		t.Errorf("expected no upserts, got %d", len(subs.upserts))
	}
	if subs.statusUpdates["sub_9"] != store.SubscriptionStatusCancelled {
		t.Errorf("status update missing: %v", subs.statusUpdates)
	}
}

func TestProcessUnknownEventAcknowledged(t *testing.T) {
	subs := &fakeSubscriptionStore{}
	p := newTestProcessor(subs)

	event := Event{Name: "refund.created"}
	if err := p.Process(context.Background(), event); err != nil {
		t.Errorf("unknown events must not error: %v", err)
	}
	if len(subs.upserts) != 0 || len(subs.statusUpdates) != 0 {
		t.Error("unknown event must not touch the store")
	}
}

func TestProcessMissingPayload(t *testing.T) {
	p := newTestProcessor(&fakeSubscriptionStore{})

	for _, name := range []string{EventOrderPaid, EventSubscriptionActivated} {
		err := p.Process(context.Background(), Event{Name: name})
		var appErr *forgeErrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != forgeErrors.ErrCodeInvalidRequest {
			t.Errorf("%s: expected invalid-request error, got %v", name, err)
		}
	}
}

func TestProcessStorageFailure(t *testing.T) {
	subs := &fakeSubscriptionStore{err: errors.New("connection refused")}
	p := newTestProcessor(subs)

	event := Event{
		Name:    EventOrderPaid,
		Payload: EventPayload{Order: &OrderEntity{ID: "order_1"}},
	}
	err := p.Process(context.Background(), event)
	var appErr *forgeErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != forgeErrors.ErrCodeStorageFailed {
		t.Errorf("expected storage error, got %v", err)
	}
}

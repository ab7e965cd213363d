package billing

import (
	"strings"
	"testing"
	"time"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event": "order.paid"}`)
	secret := "whsec_test"
	signature := Sign(body, secret)

	tests := []struct {
		name   string
		body   []byte
		header string
		secret string
		want   bool
	}{
		{"valid", body, signature, secret, true},
		{"valid uppercase header", body, strings.ToUpper(signature), secret, true},
		{"valid with whitespace", body, "  " + signature + "\n", secret, true},
		{"wrong secret", body, signature, "other", false},
		{"tampered body", []byte(`{"event": "order.paid", "x": 1}`), signature, secret, false},
		{"empty header", body, "", secret, false},
		{"empty secret", body, signature, "", false},
		{"garbage header", body, "not-a-signature", secret, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature(tt.body, tt.header, tt.secret); got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"event": "subscription.activated",
		"created_at": 1756400000,
		"payload": {
			"subscription": {
				"id": "sub_123",
				"order_id": "order_456",
				"plan_id": "plan_premium",
				"customer_email": "ada@example.com",
				"status": "active"
			}
		}
	}`)

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if event.Name != EventSubscriptionActivated {
		t.Errorf("event name = %q", event.Name)
	}
	sub := event.Payload.Subscription
	if sub == nil || sub.ID != "sub_123" || sub.OrderID != "order_456" {
		t.Errorf("unexpected subscription payload: %+v", sub)
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestWithinSkew(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt int64
		skew      time.Duration
		want      bool
	}{
		{"fresh", now.Add(-time.Minute).Unix(), 5 * time.Minute, true},
		{"stale", now.Add(-time.Hour).Unix(), 5 * time.Minute, false},
		{"future beyond skew", now.Add(time.Hour).Unix(), 5 * time.Minute, false},
		{"skew disabled", now.Add(-time.Hour).Unix(), 0, true},
		{"no timestamp", 0, 5 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Event{CreatedAt: tt.createdAt}
			if got := WithinSkew(event, tt.skew, now); got != tt.want {
				t.Errorf("WithinSkew() = %v, want %v", got, tt.want)
			}
		})
	}
}

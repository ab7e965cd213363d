// Package billing verifies and applies payment-gateway webhook events that
// drive subscription lifecycle state.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Event names delivered by the payment gateway.
const (
	EventOrderPaid             = "order.paid"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCharged   = "subscription.charged"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionCompleted = "subscription.completed"
)

// Event is the webhook envelope. The gateway nests the order or subscription
// entity under payload keyed by entity kind.
type Event struct {
	Name      string       `json:"event"`
	CreatedAt int64        `json:"created_at"`
	Payload   EventPayload `json:"payload"`
}

// EventPayload carries whichever entity the event concerns.
type EventPayload struct {
	Order        *OrderEntity        `json:"order,omitempty"`
	Subscription *SubscriptionEntity `json:"subscription,omitempty"`
}

// OrderEntity is the order object inside order.* events.
type OrderEntity struct {
	ID            string `json:"id"`
	PlanID        string `json:"plan_id"`
	CustomerEmail string `json:"customer_email"`
}

// SubscriptionEntity is the subscription object inside subscription.* events.
type SubscriptionEntity struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	PlanID        string `json:"plan_id"`
	CustomerEmail string `json:"customer_email"`
	Status        string `json:"status"`
}

// ParseEvent decodes a webhook body into an Event.
func ParseEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// VerifySignature checks the hex-encoded HMAC-SHA256 signature header the
// gateway attaches to each delivery. Comparison is constant-time.
func VerifySignature(body []byte, header, secret string) bool {
	header = strings.TrimSpace(header)
	if header == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}

// Sign computes the signature the gateway would attach to body. Used by
// tests and local delivery tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WithinSkew reports whether the event timestamp is acceptably fresh. A zero
// skew disables the check, as does an event without a timestamp.
func WithinSkew(event Event, skew time.Duration, now time.Time) bool {
	if skew <= 0 || event.CreatedAt == 0 {
		return true
	}
	issued := time.Unix(event.CreatedAt, 0)
	age := now.Sub(issued)
	if age < 0 {
		age = -age
	}
	return age <= skew
}

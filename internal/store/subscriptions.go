package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Subscription statuses as written by the billing processor.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusCompleted = "completed"
)

// Subscription is a subscription lifecycle row keyed by the payment
// gateway's order id.
type Subscription struct {
	OrderID        string    `json:"orderId"`
	SubscriptionID string    `json:"subscriptionId"`
	PlanID         string    `json:"planId"`
	Status         string    `json:"status"`
	CustomerEmail  string    `json:"customerEmail"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SubscriptionRepo persists subscription state driven by webhook events.
type SubscriptionRepo struct{ Pool PgxPool }

// NewSubscriptionRepo constructs a SubscriptionRepo with the given pool.
func NewSubscriptionRepo(p PgxPool) *SubscriptionRepo { return &SubscriptionRepo{Pool: p} }

// Upsert creates or updates a subscription row by order id.
func (r *SubscriptionRepo) Upsert(ctx context.Context, sub Subscription) error {
	tracer := otel.Tracer("store.subscriptions")
	ctx, span := tracer.Start(ctx, "subscriptions.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "subscriptions"),
	)

	now := time.Now().UTC()
	q := `INSERT INTO subscriptions (order_id, subscription_id, plan_id, status, customer_email, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
		ON CONFLICT (order_id) DO UPDATE
		SET subscription_id = EXCLUDED.subscription_id,
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			customer_email = EXCLUDED.customer_email,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, sub.OrderID, sub.SubscriptionID, sub.PlanID, sub.Status, sub.CustomerEmail, now); err != nil {
		return fmt.Errorf("op=subscription.upsert: %w", err)
	}
	return nil
}

// UpdateStatusBySubscriptionID updates the status of every row carrying the
// gateway subscription id. Returns ErrNotFound when no row matches.
func (r *SubscriptionRepo) UpdateStatusBySubscriptionID(ctx context.Context, subscriptionID, status string) error {
	tracer := otel.Tracer("store.subscriptions")
	ctx, span := tracer.Start(ctx, "subscriptions.UpdateStatusBySubscriptionID")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "subscriptions"),
	)

	q := `UPDATE subscriptions SET status=$2, updated_at=$3 WHERE subscription_id=$1`
	tag, err := r.Pool.Exec(ctx, q, subscriptionID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=subscription.update_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=subscription.update_status: %w", ErrNotFound)
	}
	return nil
}

// GetByOrderID loads a subscription by order id or returns ErrNotFound.
func (r *SubscriptionRepo) GetByOrderID(ctx context.Context, orderID string) (Subscription, error) {
	tracer := otel.Tracer("store.subscriptions")
	ctx, span := tracer.Start(ctx, "subscriptions.GetByOrderID")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "subscriptions"),
	)

	q := `SELECT order_id, subscription_id, plan_id, status, customer_email, created_at, updated_at
		FROM subscriptions WHERE order_id=$1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, orderID), "subscription.get_by_order")
}

// GetBySubscriptionID loads the most recently updated row for a gateway
// subscription id or returns ErrNotFound.
func (r *SubscriptionRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (Subscription, error) {
	tracer := otel.Tracer("store.subscriptions")
	ctx, span := tracer.Start(ctx, "subscriptions.GetBySubscriptionID")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "subscriptions"),
	)

	q := `SELECT order_id, subscription_id, plan_id, status, customer_email, created_at, updated_at
		FROM subscriptions WHERE subscription_id=$1 ORDER BY updated_at DESC LIMIT 1`
	return r.scanOne(r.Pool.QueryRow(ctx, q, subscriptionID), "subscription.get_by_subscription")
}

func (r *SubscriptionRepo) scanOne(row pgx.Row, op string) (Subscription, error) {
	var sub Subscription
	err := row.Scan(&sub.OrderID, &sub.SubscriptionID, &sub.PlanID, &sub.Status,
		&sub.CustomerEmail, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, fmt.Errorf("op=%s: %w", op, ErrNotFound)
		}
		return Subscription{}, fmt.Errorf("op=%s: %w", op, err)
	}
	return sub, nil
}

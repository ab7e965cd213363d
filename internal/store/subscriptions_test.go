package store_test

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/store"
)

func TestSubscriptionRepo_Upsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sub     store.Subscription
		setup   func(pgxmock.PgxPoolIface)
		wantErr bool
		errMsg  string
	}{
		{
			name: "successful upsert",
			sub: store.Subscription{
				OrderID:        "order-1",
				SubscriptionID: "sub-1",
				PlanID:         "plan-premium",
				Status:         store.SubscriptionStatusActive,
				CustomerEmail:  "user@example.com",
			},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("INSERT INTO subscriptions").
					WithArgs("order-1", "sub-1", "plan-premium", store.SubscriptionStatusActive, "user@example.com", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			sub: store.Subscription{
				OrderID: "order-err",
				Status:  store.SubscriptionStatusActive,
			},
			setup: func(m pgxmock.PgxPoolIface) {
				m.ExpectExec("INSERT INTO subscriptions").
					WithArgs("order-err", "", "", store.SubscriptionStatusActive, "", pgxmock.AnyArg()).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
			errMsg:  "op=subscription.upsert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer m.Close()
			tt.setup(m)

			repo := store.NewSubscriptionRepo(m)
			err = repo.Upsert(context.Background(), tt.sub)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, m.ExpectationsWereMet())
		})
	}
}

func TestSubscriptionRepo_UpdateStatusBySubscriptionID(t *testing.T) {
	t.Parallel()

	t.Run("updates matching rows", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		m.ExpectExec("UPDATE subscriptions SET status").
			WithArgs("sub-1", store.SubscriptionStatusCancelled, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := store.NewSubscriptionRepo(m)
		err = repo.UpdateStatusBySubscriptionID(context.Background(), "sub-1", store.SubscriptionStatusCancelled)
		require.NoError(t, err)
		require.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("no matching rows returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		m.ExpectExec("UPDATE subscriptions SET status").
			WithArgs("sub-missing", store.SubscriptionStatusCancelled, pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := store.NewSubscriptionRepo(m)
		err = repo.UpdateStatusBySubscriptionID(context.Background(), "sub-missing", store.SubscriptionStatusCancelled)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, m.ExpectationsWereMet())
	})
}

func TestSubscriptionRepo_GetByOrderID(t *testing.T) {
	t.Parallel()

	fixedTime := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		rows := pgxmock.NewRows([]string{"order_id", "subscription_id", "plan_id", "status", "customer_email", "created_at", "updated_at"}).
			AddRow("order-1", "sub-1", "plan-premium", store.SubscriptionStatusActive, "user@example.com", fixedTime, fixedTime)
		m.ExpectQuery("SELECT order_id, subscription_id").
			WithArgs("order-1").
			WillReturnRows(rows)

		repo := store.NewSubscriptionRepo(m)
		sub, err := repo.GetByOrderID(context.Background(), "order-1")
		require.NoError(t, err)
		assert.Equal(t, "order-1", sub.OrderID)
		assert.Equal(t, "sub-1", sub.SubscriptionID)
		assert.Equal(t, store.SubscriptionStatusActive, sub.Status)
		require.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		m.ExpectQuery("SELECT order_id, subscription_id").
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{"order_id", "subscription_id", "plan_id", "status", "customer_email", "created_at", "updated_at"}))

		repo := store.NewSubscriptionRepo(m)
		_, err = repo.GetByOrderID(context.Background(), "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, m.ExpectationsWereMet())
	})
}

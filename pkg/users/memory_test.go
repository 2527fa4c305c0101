package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkout/pkg/users"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := users.NewMemoryStore(users.Record{ID: "u1", Email: "a@x.io"})

	t.Run("find matches id and email", func(t *testing.T) {
		r, err := store.FindOne(ctx, users.Filter{ID: "u1", Email: "a@x.io"})
		require.NoError(t, err)
		assert.Equal(t, "u1", r.ID)
	})

	t.Run("find rejects email mismatch", func(t *testing.T) {
		_, err := store.FindOne(ctx, users.Filter{ID: "u1", Email: "b@x.io"})
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("find requires id", func(t *testing.T) {
		_, err := store.FindOne(ctx, users.Filter{Email: "a@x.io"})
		assert.ErrorIs(t, err, users.ErrInvalidFilter)
	})

	t.Run("update overwrites five fields", func(t *testing.T) {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		err := store.Update(ctx, users.Filter{ID: "u1"}, users.Patch{
			SubscriptionStatus: "pending_activation",
			PlanType:           "Starter",
			SelectedPlan:       "price_1",
			StripeSessionID:    "cs_1",
			UpdatedAt:          now,
		})
		require.NoError(t, err)

		r, err := store.FindOne(ctx, users.Filter{ID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, users.Record{
			ID:                 "u1",
			Email:              "a@x.io",
			SubscriptionStatus: "pending_activation",
			PlanType:           "Starter",
			SelectedPlan:       "price_1",
			StripeSessionID:    "cs_1",
			UpdatedAt:          now,
		}, *r)
	})

	t.Run("update of missing user", func(t *testing.T) {
		err := store.Update(ctx, users.Filter{ID: "nope"}, users.Patch{})
		assert.ErrorIs(t, err, users.ErrNoRowsUpdated)
	})

	t.Run("repair plan type", func(t *testing.T) {
		require.NoError(t, store.RepairPlanType(ctx, "u1", "Pro"))
		r, err := store.FindOne(ctx, users.Filter{ID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "Pro", r.PlanType)

		assert.ErrorIs(t, store.RepairPlanType(ctx, "nope", "Pro"), users.ErrRepairRejected)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := users.NewMemoryStore()
	store.Put(users.Record{ID: "u1", PlanType: "Starter"})

	r, err := store.FindOne(context.Background(), users.Filter{ID: "u1"})
	require.NoError(t, err)
	r.PlanType = "mutated"

	again, err := store.FindOne(context.Background(), users.Filter{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "Starter", again.PlanType)
}

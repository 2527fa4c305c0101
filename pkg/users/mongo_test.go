package users_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/checkout/pkg/mongo"
	"github.com/dmitrymomot/checkout/pkg/users"
)

// TestMongoStore_Integration runs against a real server when TEST_MONGODB_URL is set.
func TestMongoStore_Integration(t *testing.T) {
	url := os.Getenv("TEST_MONGODB_URL")
	if url == "" {
		t.Skip("TEST_MONGODB_URL not set")
	}

	ctx := context.Background()
	client, err := mongo.New(ctx, mongo.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    2,
		RetryAttempts:  1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("checkout_test")
	coll := "users_" + time.Now().Format("150405")
	t.Cleanup(func() { _ = db.Collection(coll).Drop(ctx) })

	_, err = db.Collection(coll).InsertOne(ctx, bson.D{{Key: "_id", Value: "u1"}, {Key: "email", Value: "a@x.io"}})
	require.NoError(t, err)

	store := users.NewMongoStore(db, coll)

	_, err = store.FindOne(ctx, users.Filter{ID: "u2"})
	assert.ErrorIs(t, err, users.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Update(ctx, users.Filter{ID: "u1"}, users.Patch{
		SubscriptionStatus: "pending_lifetime",
		PlanType:           "Lifetime Deal",
		SelectedPlan:       "lifetime_deal",
		StripeSessionID:    "cs_1",
		UpdatedAt:          now,
	}))
	assert.ErrorIs(t, store.Update(ctx, users.Filter{ID: "u2"}, users.Patch{}), users.ErrNoRowsUpdated)

	r, err := store.FindOne(ctx, users.Filter{ID: "u1", Email: "a@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "Lifetime Deal", r.PlanType)
	assert.Equal(t, now, r.UpdatedAt.UTC())
}

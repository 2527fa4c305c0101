package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoStore keeps user records in a collection keyed by string _id.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if db == nil {
		panic("users: mongo database cannot be nil")
	}
	if collection == "" {
		collection = "users"
	}
	return &MongoStore{coll: db.Collection(collection)}
}

func mongoFilter(f Filter) bson.D {
	filter := bson.D{{Key: "_id", Value: f.ID}}
	if f.Email != "" {
		filter = append(filter, bson.E{Key: "email", Value: f.Email})
	}
	return filter
}

func (s *MongoStore) FindOne(ctx context.Context, f Filter) (*Record, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	var r Record
	if err := s.coll.FindOne(ctx, mongoFilter(f)).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &r, nil
}

func (s *MongoStore) Update(ctx context.Context, f Filter, p Patch) error {
	if err := f.validate(); err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, mongoFilter(f), bson.D{{Key: "$set", Value: bson.D{
		{Key: "subscription_status", Value: p.SubscriptionStatus},
		{Key: "plan_type", Value: p.PlanType},
		{Key: "selected_plan", Value: p.SelectedPlan},
		{Key: "stripe_session_id", Value: p.StripeSessionID},
		{Key: "updated_at", Value: p.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}

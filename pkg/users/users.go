package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrNoRowsUpdated  = errors.New("update matched no user record")
	ErrInvalidFilter  = errors.New("user filter requires an id")
	ErrRepairRejected = errors.New("plan type repair rejected")
)

// Record is the subset of a user row checkout reads and writes.
type Record struct {
	ID                 string    `bson:"_id"`
	Email              string    `bson:"email"`
	SubscriptionStatus string    `bson:"subscription_status"`
	PlanType           string    `bson:"plan_type"`
	SelectedPlan       string    `bson:"selected_plan"`
	StripeSessionID    string    `bson:"stripe_session_id"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// Filter selects one user. Email is matched only when set.
type Filter struct {
	ID    string
	Email string
}

func (f Filter) validate() error {
	if f.ID == "" {
		return ErrInvalidFilter
	}
	return nil
}

// Patch overwrites the pending plan selection. All five fields are written
// together; there is no partial update.
type Patch struct {
	SubscriptionStatus string
	PlanType           string
	SelectedPlan       string
	StripeSessionID    string
	UpdatedAt          time.Time
}

func (p Patch) apply(r *Record) {
	r.SubscriptionStatus = p.SubscriptionStatus
	r.PlanType = p.PlanType
	r.SelectedPlan = p.SelectedPlan
	r.StripeSessionID = p.StripeSessionID
	r.UpdatedAt = p.UpdatedAt
}

type Reader interface {
	// FindOne returns ErrNotFound when no record matches.
	FindOne(ctx context.Context, f Filter) (*Record, error)
}

type Writer interface {
	// Update returns ErrNoRowsUpdated when nothing matched, which includes
	// rows hidden by row-level security.
	Update(ctx context.Context, f Filter, p Patch) error
}

// PlanTypeRepairer sets plan_type through a path that bypasses the normal
// write rules.
type PlanTypeRepairer interface {
	RepairPlanType(ctx context.Context, userID, planType string) error
}

type Store interface {
	Reader
	Writer
}

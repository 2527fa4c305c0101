package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/checkout/pkg/pg"
)

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore works against the users table. Construct one per pool: the
// standard pool is subject to row-level security, the service pool is not.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("users: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

const (
	findOneQuery = `SELECT id::text, email,
	COALESCE(subscription_status, ''), COALESCE(plan_type, ''),
	COALESCE(selected_plan, ''), COALESCE(stripe_session_id, ''), updated_at
FROM users
WHERE id::text = $1 AND ($2 = '' OR email = $2)`

	updateQuery = `UPDATE users
SET subscription_status = $3, plan_type = $4, selected_plan = $5,
	stripe_session_id = $6, updated_at = $7
WHERE id::text = $1 AND ($2 = '' OR email = $2)`

	repairQuery = `SELECT admin_set_plan_type($1, $2)`
)

func (s *PostgresStore) FindOne(ctx context.Context, f Filter) (*Record, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	var r Record
	err := s.db.QueryRow(ctx, findOneQuery, f.ID, f.Email).Scan(
		&r.ID, &r.Email, &r.SubscriptionStatus, &r.PlanType,
		&r.SelectedPlan, &r.StripeSessionID, &r.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) Update(ctx context.Context, f Filter, p Patch) error {
	if err := f.validate(); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, updateQuery, f.ID, f.Email,
		p.SubscriptionStatus, p.PlanType, p.SelectedPlan, p.StripeSessionID, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}

// RepairPlanType calls the admin_set_plan_type database function.
func (s *PostgresStore) RepairPlanType(ctx context.Context, userID, planType string) error {
	var ok bool
	if err := s.db.QueryRow(ctx, repairQuery, userID, planType).Scan(&ok); err != nil {
		if pg.IsUndefinedFunctionError(err) || pg.IsInsufficientPrivilegeError(err) {
			return errors.Join(ErrRepairRejected, err)
		}
		return fmt.Errorf("repair plan type: %w", err)
	}
	if !ok {
		return ErrRepairRejected
	}
	return nil
}

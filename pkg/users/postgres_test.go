package users_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/pg"
	"github.com/dmitrymomot/checkout/pkg/users"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgconn.CommandTag), called.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

// fakeRow copies values into Scan destinations in order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestPostgresStore_FindOne(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, mock.Anything, []any{"u1", "a@x.io"}).
			Return(fakeRow{values: []any{"u1", "a@x.io", "", "", "", "", now}})

		r, err := users.NewPostgresStore(db).FindOne(context.Background(), users.Filter{ID: "u1", Email: "a@x.io"})
		require.NoError(t, err)
		assert.Equal(t, "u1", r.ID)
		assert.Equal(t, now, r.UpdatedAt)
		db.AssertExpectations(t)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{err: pgx.ErrNoRows})

		_, err := users.NewPostgresStore(db).FindOne(context.Background(), users.Filter{ID: "u1"})
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection reset")
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{err: boom})

		_, err := users.NewPostgresStore(db).FindOne(context.Background(), users.Filter{ID: "u1"})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, users.ErrNotFound)
	})
}

func TestPostgresStore_Update(t *testing.T) {
	t.Parallel()

	patch := users.Patch{
		SubscriptionStatus: "pending_activation",
		PlanType:           "Starter",
		SelectedPlan:       "price_1",
		StripeSessionID:    "cs_1",
		UpdatedAt:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("one row", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("Exec", mock.Anything, mock.Anything,
			[]any{"u1", "", "pending_activation", "Starter", "price_1", "cs_1", patch.UpdatedAt}).
			Return(pgconn.NewCommandTag("UPDATE 1"), nil)

		require.NoError(t, users.NewPostgresStore(db).Update(context.Background(), users.Filter{ID: "u1"}, patch))
		db.AssertExpectations(t)
	})

	t.Run("zero rows is a failure", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

		err := users.NewPostgresStore(db).Update(context.Background(), users.Filter{ID: "u1"}, patch)
		assert.ErrorIs(t, err, users.ErrNoRowsUpdated)
	})

	t.Run("driver error", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
			Return(pgconn.CommandTag{}, &pgconn.PgError{Code: "42501"})

		err := users.NewPostgresStore(db).Update(context.Background(), users.Filter{ID: "u1"}, patch)
		require.Error(t, err)
		assert.True(t, pg.IsInsufficientPrivilegeError(err))
	})
}

func TestPostgresStore_RepairPlanType(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, "SELECT admin_set_plan_type($1, $2)", []any{"u1", "Pro"}).
			Return(fakeRow{values: []any{true}})

		assert.NoError(t, users.NewPostgresStore(db).RepairPlanType(context.Background(), "u1", "Pro"))
		db.AssertExpectations(t)
	})

	t.Run("function reports no row", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{values: []any{false}})

		assert.ErrorIs(t, users.NewPostgresStore(db).RepairPlanType(context.Background(), "u1", "Pro"), users.ErrRepairRejected)
	})

	t.Run("function missing", func(t *testing.T) {
		t.Parallel()
		db := &mockDB{}
		db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
			Return(fakeRow{err: &pgconn.PgError{Code: "42883"}})

		assert.ErrorIs(t, users.NewPostgresStore(db).RepairPlanType(context.Background(), "u1", "Pro"), users.ErrRepairRejected)
	})
}

// TestPostgresStore_Integration runs against a real database when
// TEST_PG_CONN_URL is set.
func TestPostgresStore_Integration(t *testing.T) {
	connURL := os.Getenv("TEST_PG_CONN_URL")
	if connURL == "" {
		t.Skip("TEST_PG_CONN_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{
		ConnectionString: connURL,
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		RetryAttempts:    1,
		MigrationsTable:  "schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, users.Migrations, users.MigrationsDir, cfg, logger.Discard()))

	var id string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email) VALUES ($1) RETURNING id::text`,
		"it-"+time.Now().Format("150405.000000")+"@example.com",
	).Scan(&id))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM users WHERE id::text = $1`, id) })

	store := users.NewPostgresStore(pool)
	require.NoError(t, store.Update(ctx, users.Filter{ID: id}, users.Patch{
		SubscriptionStatus: "pending_activation",
		PlanType:           "",
		SelectedPlan:       "price_1",
		StripeSessionID:    "cs_it",
		UpdatedAt:          time.Now().UTC(),
	}))
	require.NoError(t, store.RepairPlanType(ctx, id, "Starter"))

	r, err := store.FindOne(ctx, users.Filter{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Starter", r.PlanType)
	assert.Equal(t, "cs_it", r.StripeSessionID)
}

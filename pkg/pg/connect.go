package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/checkout/pkg/retry"
)

// Connect opens the standard connection pool.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	return connect(ctx, cfg, cfg.ConnectionString)
}

// ConnectService opens the privileged pool. It returns (nil, nil) when no
// service connection string is configured.
func ConnectService(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ServiceConnectionString == "" {
		return nil, nil
	}
	return connect(ctx, cfg, cfg.ServiceConnectionString)
}

func connect(ctx context.Context, cfg Config, connString string) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, ErrEmptyConnectionString
	}
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	poolConfig.MaxConns = cfg.MaxOpenConns
	poolConfig.MinConns = cfg.MaxIdleConns
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	// Wait RetryInterval, then 2x, then 3x between attempts.
	policy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		Backoff:     retry.LinearBackoff{Interval: cfg.RetryInterval},
	}

	var pool *pgxpool.Pool
	_, err = policy.Do(ctx, func(ctx context.Context, _ int) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		// Ping catches authentication and permission issues that pool creation defers.
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	return pool, nil
}

// Healthcheck returns a readiness probe for pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

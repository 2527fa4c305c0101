package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/config"
	"github.com/dmitrymomot/checkout/pkg/environment"
	"github.com/dmitrymomot/checkout/pkg/httpserver"
	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/metrics"
	"github.com/dmitrymomot/checkout/pkg/mongo"
	"github.com/dmitrymomot/checkout/pkg/pg"
	"github.com/dmitrymomot/checkout/pkg/plan"
	"github.com/dmitrymomot/checkout/pkg/ratelimit"
	"github.com/dmitrymomot/checkout/pkg/redis"
	"github.com/dmitrymomot/checkout/pkg/requestid"
	"github.com/dmitrymomot/checkout/pkg/retry"
	"github.com/dmitrymomot/checkout/pkg/users"
	"github.com/dmitrymomot/checkout/svc/checkout"
)

func serve(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}
	env := environment.Parse(cfg.app.Env)
	log := logger.New(
		logger.WithEnvironment(env, cfg.app.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	stores, err := openStores(ctx, cfg.app, log)
	if err != nil {
		return err
	}
	defer stores.close()

	provider, err := newProvider(cfg.app.Provider, log)
	if err != nil {
		return err
	}

	catalog, err := cfg.checkout.Catalog()
	if err != nil {
		return err
	}
	resolver, err := plan.NewResolver(catalog, plan.WithLifetimeAmount(cfg.checkout.LifetimeMoney()))
	if err != nil {
		return err
	}

	collector := metrics.New("checkout")
	persister := checkout.NewPersister(
		checkout.Targets(stores.standard, stores.privileged),
		stores.reader,
		retry.NewPolicy(cfg.checkout.Retry),
		checkout.WithPersisterLogger(log.With(logger.Component("persister"))),
		checkout.WithPersisterMetrics(collector),
	)
	svc := checkout.NewService(resolver, provider, stores.reader, persister, cfg.checkout.BaseURL,
		checkout.WithLogger(log.With(logger.Component("checkout"))),
		checkout.WithMetrics(collector),
	)

	opts := []checkout.RouterOption{
		checkout.WithCORSOrigin(cfg.checkout.CORSOrigin),
		checkout.WithEnvironment(env),
		checkout.WithRouterLogger(log),
		checkout.WithHTTPMetrics(collector.Middleware, collector.Handler()),
		checkout.WithReadiness(stores.checks...),
	}
	if cfg.checkout.ExposeErrorDetails != nil {
		opts = append(opts, checkout.WithErrorDetails(*cfg.checkout.ExposeErrorDetails))
	}

	if cfg.rateLimit.Enabled {
		limiter, check, closeLimiter, err := newLimiter(ctx, cfg.app.RateLimitStore, cfg.rateLimit)
		if err != nil {
			return err
		}
		defer closeLimiter()
		opts = append(opts, checkout.WithRateLimit(limiter, ratelimit.ByClientIP))
		if check != nil {
			opts = append(opts, checkout.WithReadiness(check))
		}
	}

	log.InfoContext(ctx, "starting checkout service",
		logger.Provider(provider.Name()),
		slog.String("store", cfg.app.StoreDriver),
		slog.Int("plans", catalog.Len()),
		slog.Bool("privileged_writer", stores.privileged != nil),
	)
	return httpserver.New(cfg.http, log).Run(ctx, checkout.NewRouter(svc, opts...))
}

type userStores struct {
	reader     users.Reader
	standard   users.Writer
	privileged users.Writer
	checks     []func(context.Context) error
	closers    []func()
}

func (s *userStores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, app appConfig, log *slog.Logger) (*userStores, error) {
	switch app.StoreDriver {
	case driverPostgres:
		var pgCfg pg.Config
		if err := config.Load(&pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		standard := users.NewPostgresStore(pool)
		s := &userStores{
			reader:   standard,
			standard: standard,
			checks:   []func(context.Context) error{pg.Healthcheck(pool)},
			closers:  []func(){pool.Close},
		}
		servicePool, err := pg.ConnectService(ctx, pgCfg)
		if err != nil {
			s.close()
			return nil, err
		}
		if servicePool != nil {
			s.privileged = users.NewPostgresStore(servicePool)
			s.checks = append(s.checks, pg.Healthcheck(servicePool))
			s.closers = append(s.closers, servicePool.Close)
		} else {
			log.WarnContext(ctx, "PG_SERVICE_CONN_URL not set, writes go through the standard client only")
		}
		return s, nil

	case driverMongo:
		var mongoCfg mongo.Config
		if err := config.Load(&mongoCfg); err != nil {
			return nil, err
		}
		client, err := mongo.New(ctx, mongoCfg)
		if err != nil {
			return nil, err
		}
		store := users.NewMongoStore(client.Database(mongoCfg.Database), app.MongoCollection)
		return &userStores{
			reader:   store,
			standard: store,
			checks:   []func(context.Context) error{mongo.Healthcheck(client)},
			closers: []func(){func() {
				if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
					log.Warn("mongo disconnect failed", logger.Error(err))
				}
			}},
		}, nil

	case driverMemory:
		log.WarnContext(ctx, "using in-memory user store, records are lost on restart")
		store := users.NewMemoryStore()
		return &userStores{reader: store, standard: store}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", app.StoreDriver)
}

func newProvider(name string, log *slog.Logger) (billing.Provider, error) {
	switch name {
	case billing.ProviderStripe:
		var cfg billing.StripeConfig
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		return billing.NewStripeProvider(cfg, billing.WithStripeLogger(log.With(logger.Component("stripe"))))
	case billing.ProviderPaddle:
		var cfg billing.PaddleConfig
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		return billing.NewPaddleProvider(cfg)
	}
	return nil, errors.New("unknown PROVIDER " + name)
}

func newLimiter(ctx context.Context, store string, cfg ratelimit.Config) (ratelimit.Limiter, func(context.Context) error, func(), error) {
	if store != rateLimitStoreRedis {
		l, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), cfg)
		return l, nil, func() {}, err
	}

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, nil, nil, err
	}
	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	l, err := ratelimit.NewFixedWindow(ratelimit.NewRedisStore(client), cfg)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, err
	}
	return l, redis.Healthcheck(client), func() { _ = client.Close() }, nil
}

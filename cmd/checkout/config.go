package main

import (
	"fmt"

	"github.com/dmitrymomot/checkout/pkg/billing"
	"github.com/dmitrymomot/checkout/pkg/config"
	"github.com/dmitrymomot/checkout/pkg/httpserver"
	"github.com/dmitrymomot/checkout/pkg/ratelimit"
	"github.com/dmitrymomot/checkout/svc/checkout"
)

const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverMemory   = "memory"

	rateLimitStoreMemory = "memory"
	rateLimitStoreRedis  = "redis"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"checkout"`
	Provider    string `env:"PROVIDER" envDefault:"stripe"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	// MongoCollection is the users collection when STORE_DRIVER=mongo.
	MongoCollection string `env:"MONGODB_USERS_COLLECTION" envDefault:"users"`
	RateLimitStore  string `env:"RATE_LIMIT_STORE" envDefault:"memory"`
}

func (c appConfig) validate() error {
	switch c.Provider {
	case billing.ProviderStripe, billing.ProviderPaddle:
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}
	switch c.StoreDriver {
	case driverPostgres, driverMongo, driverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.RateLimitStore {
	case rateLimitStoreMemory, rateLimitStoreRedis:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimitStore)
	}
	return nil
}

type serveConfig struct {
	app       appConfig
	checkout  checkout.Config
	http      httpserver.Config
	rateLimit ratelimit.Config
}

func loadServeConfig() (serveConfig, error) {
	var cfg serveConfig
	if err := config.Load(&cfg.app); err != nil {
		return cfg, err
	}
	if err := cfg.app.validate(); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.checkout); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.http); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.rateLimit); err != nil {
		return cfg, err
	}
	return cfg, nil
}

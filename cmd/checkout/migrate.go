package main

import (
	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/checkout/pkg/config"
	"github.com/dmitrymomot/checkout/pkg/environment"
	"github.com/dmitrymomot/checkout/pkg/logger"
	"github.com/dmitrymomot/checkout/pkg/pg"
	"github.com/dmitrymomot/checkout/pkg/users"
)

// migrate applies the users schema. It prefers the service role connection
// since admin_set_plan_type is created SECURITY DEFINER.
func migrate(c *cli.Context) error {
	ctx := c.Context

	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	log := logger.New(logger.WithEnvironment(environment.Parse(app.Env), app.ServiceName))

	var cfg pg.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	pool, err := pg.ConnectService(ctx, cfg)
	if err != nil {
		return err
	}
	if pool == nil {
		if pool, err = pg.Connect(ctx, cfg); err != nil {
			return err
		}
	}
	defer pool.Close()

	return pg.Migrate(ctx, pool, users.Migrations, users.MigrationsDir, cfg, log)
}

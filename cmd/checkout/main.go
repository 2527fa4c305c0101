package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:    "checkout",
		Usage:   "Plan checkout session service",
		Version: version,
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the users schema migrations to Postgres",
				Action: migrate,
			},
			{
				Name:  "plans",
				Usage: "Print the resolved plan catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "catalog",
						Aliases: []string{"c"},
						Usage:   "Catalog YAML file (defaults to CHECKOUT_CATALOG_FILE or the built-in catalog)",
						EnvVars: []string{"CHECKOUT_CATALOG_FILE"},
					},
				},
				Action: printPlans,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Default().Error("checkout exited with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

package users

import "embed"

// Migrations holds the goose migrations for the users schema, rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

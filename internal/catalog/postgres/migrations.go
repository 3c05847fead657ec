package postgres

import "embed"

// migrations holds the catalog schema, applied by Repository.Migrate.
//
//go:embed migrations/*.up.sql
var migrations embed.FS

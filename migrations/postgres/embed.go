// Package migrations embeds the SQL migration and seed files.
package migrations

import "embed"

// FS contains the schema migrations, ordered by filename prefix.
//
//go:embed *_up.sql *_down.sql
var FS embed.FS

// SeedFS contains the idempotent seed data applied by the seed command.
//
//go:embed seed.sql
var SeedFS embed.FS

package migrations

import "embed"

// SQLite holds the schema migrations for the sqlite store.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the schema migrations for the postgres store.
//
//go:embed postgres/*.sql
var Postgres embed.FS

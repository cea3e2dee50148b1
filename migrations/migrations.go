package migrations

import "embed"

// Postgres holds the schema for the pgstore driver.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite holds the schema for the sqlitestore driver.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

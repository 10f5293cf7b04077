// Package migrations embeds the versioned SQL schema for PostgreSQL.
package migrations

import "embed"

// Postgres holds the golang-migrate files under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS

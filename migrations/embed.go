// Package migrations embeds SQL migration files for database schema management.
package migrations

import "embed"

// FS holds the collector schema, applied in order by golang-migrate.
//
//go:embed *.sql
var FS embed.FS

// Package schema contains the embedded migration files for each supported
// database.
package schema

import "embed"

// Directories inside MigrationsFS.
const (
	PostgresDir = "pgmigrations"
	SQLiteDir   = "sqlitemigrations"
)

// MigrationsFS contains all SQL migration files.
//
//go:embed pgmigrations/*.sql sqlitemigrations/*.sql
var MigrationsFS embed.FS

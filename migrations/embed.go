// Package migrations embeds the SQL schema migrations for every database
// the application manages.
package migrations

import "embed"

// FS holds one subdirectory of NNN_name.sql files per database.
//
//go:embed sqlite/*.sql postgres/*.sql graph/*.sql
var FS embed.FS

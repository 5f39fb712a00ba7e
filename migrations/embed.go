// Package migrations embeds the versioned schema files of the local database.
package migrations

import "embed"

// FS holds one sub-directory of NNN_name.sql files per storage backend
//
//go:embed sqlite/*.sql
var FS embed.FS

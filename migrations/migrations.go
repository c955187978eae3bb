// Package migrations carries the schema files compiled into the binary
// so deployments never depend on a migrations directory on disk.
package migrations

import "embed"

// Files holds every migration; filenames are applied in lexical order,
// so new files must sort after the existing ones.
//
//go:embed *.sql
var Files embed.FS

// Package migrations embeds the SQL schema so binaries can migrate without
// a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate naming
//
//go:embed *.sql
var FS embed.FS

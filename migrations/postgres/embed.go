// Package migrations embeds the SQL migration files.
package migrations

import "embed"

// FS contains the registration schema migrations.
//
//go:embed *.sql
var FS embed.FS

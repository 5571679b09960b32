// Package migrations embeds the SQL schema migrations applied by pg.Migrate
// at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

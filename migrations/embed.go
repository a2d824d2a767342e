// Package migrations embeds the catalog schema migrations into the binary.
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil { ... }
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS

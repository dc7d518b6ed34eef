// Package migrations embeds the goose SQL migrations for the mock backend's
// SQLite database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

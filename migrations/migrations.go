// Package migrations embeds the goose migrations for the Postgres schema.
package migrations

import "embed"

// FS holds the numbered goose SQL files.
//
//go:embed *.sql
var FS embed.FS

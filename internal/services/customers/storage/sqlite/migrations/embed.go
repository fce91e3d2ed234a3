package migrations

import "embed"

// FS contains embedded SQLite migrations for customers storage.
//
//go:embed *.sql
var FS embed.FS

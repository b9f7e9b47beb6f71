// Package migrations embeds the run store schema into the binary.
//
// Pass FS as database.Config.Migrations so runs can be recorded without
// the SQL files present on disk.
package migrations

import "embed"

// FS holds every *.sql migration at its root.
//
//go:embed *.sql
var FS embed.FS

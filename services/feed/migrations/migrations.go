// Package migrations goose миграции фида, вшитые в бинарник
package migrations

import "embed"

// FS SQL миграции для goose.SetBaseFS
//
//go:embed *.sql
var FS embed.FS

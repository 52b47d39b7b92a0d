// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for stores, products, clients, orders, the outbox,
// and API keys. Statements are idempotent (CREATE ... IF NOT EXISTS).
//
//go:embed migrations/001_schema.sql
var Schema string

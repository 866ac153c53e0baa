package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		date_joined TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		priority VARCHAR(16) NOT NULL DEFAULT 'medium',
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (created_at <= updated_at)
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_created_at ON tasks (owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_priority ON tasks (owner_id, priority)`,
	`CREATE TABLE IF NOT EXISTS blacklisted_tokens (
		jti VARCHAR(64) PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		blacklisted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS blacklisted_tokens_expires_at ON blacklisted_tokens (expires_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_superuser BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		date_joined DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_created_at ON tasks (owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS tasks_owner_priority ON tasks (owner_id, priority)`,
	`CREATE TABLE IF NOT EXISTS blacklisted_tokens (
		jti TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		blacklisted_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS blacklisted_tokens_expires_at ON blacklisted_tokens (expires_at)`,
}

// Migrate creates the tables and indexes the stores rely on. It is idempotent.
func Migrate(ctx context.Context, db *DB) error {
	var statements []string
	switch db.Dialect {
	case dialect.Postgres:
		statements = postgresSchema
	case dialect.SQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("unsupported dialect %q", db.Dialect)
	}

	slog.InfoContext(ctx, "running schema migration", slog.String("dialect", db.Dialect))

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}

	return nil
}

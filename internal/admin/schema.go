package admin

import (
	"context"
	"fmt"
	"path/filepath"

	"datajanitor/internal/platform/storage"
)

// DatabasePath is where the auth database lives under the data directory
// on the embedded backend, mirroring the web application's layout.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "auth", "sqlite", "auth.db")
}

const sqliteUsersDDL = `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT '',
	hashed_password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	is_active BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const postgresUsersDDL = `CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT '',
	hashed_password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	is_active BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the auth tables when absent. Safe to run every
// invocation; existing tables and data are left untouched.
func EnsureSchema(ctx context.Context, db *storage.DB) error {
	ddl := sqliteUsersDDL
	if db.Dialect().Name() == "postgres" {
		ddl = postgresUsersDDL
	}
	if _, err := db.Runner(ctx).ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	idx := "CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)"
	if _, err := db.Runner(ctx).ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	return nil
}

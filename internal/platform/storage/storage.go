package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"datajanitor/pkg/platform/sentinel"
)

// Driver selects the storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config describes how to reach one database. Path is used by the SQLite
// backend, DSN by the PostgreSQL backend.
type Config struct {
	Driver Driver
	Path   string
	DSN    string
}

// DB is a point-in-time connection handle to one database plus the dialect
// needed to talk to it.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Queryer is the subset of database/sql shared by *sql.DB and *sql.Tx that
// reconciliation queries are written against.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured backend and verifies reachability.
// SQLite databases are created on demand, including parent directories,
// matching how the ingestion side lays out its data files.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	var (
		db  *sql.DB
		d   Dialect
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err = sql.Open("sqlite3", cfg.Path+"?_foreign_keys=on&_journal_mode=WAL")
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// A single writer keeps reconciliation transactions serialized and
		// avoids SQLITE_BUSY from the pool racing itself.
		db.SetMaxOpenConns(1)
		d = sqliteDialect{}
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, sentinel.ErrUnavailable)
	}
	return &DB{DB: db, dialect: d}, nil
}

// Dialect returns the dialect for the opened backend.
func (db *DB) Dialect() Dialect { return db.dialect }

// Runner returns the transaction stored in ctx when present, the bare
// connection otherwise. Stores use it so the same code path works inside
// and outside a reconciliation transaction.
func (db *DB) Runner(ctx context.Context) Queryer {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return db.DB
}

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/roach88/datastore/internal/session"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema version tracking (SQLite user_version):
// 0 - no schema
// 1 - events and event_slots tables
const currentSchemaVersion = 1

// Store owns a database pool with the event schema applied.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	sessions *session.Factory
}

// Open opens backend ("sqlite", "postgres", "mysql") at dsn, applies the
// schema and returns the store.
//
// SQLite databases are additionally configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - A single pooled connection (one writer at a time)
//
// Open is idempotent - safe to call multiple times on the same database.
func Open(ctx context.Context, backend, dsn string, opts ...session.Option) (*Store, error) {
	dialect, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}

	factory, err := session.Open(ctx, backend, dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := factory.DB()

	if dialect == SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	if err := applySchema(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, dialect: dialect, sessions: factory}, nil
}

// OpenSQLite creates or opens a SQLite database file at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(context.Background(), "sqlite", path)
}

// Close closes the database pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer the repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect of the backend.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Sessions returns the session factory over the store's pool.
func (s *Store) Sessions() *session.Factory {
	return s.sessions
}

// Events returns an event repository speaking the store's dialect.
func (s *Store) Events(opts ...EventsOption) *Events {
	return NewEvents(s.dialect, opts...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist. Statements run one at a
// time because not every driver accepts multi-statement Exec.
func applySchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	data, err := schemaFS.ReadFile("schema/" + dialect.String() + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	for _, stmt := range splitStatements(string(data)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	if dialect == SQLite {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// splitStatements splits a schema script on ';', dropping fragments that hold
// only comments or whitespace.
func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		hasSQL := false
		for _, line := range strings.Split(part, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				hasSQL = true
				break
			}
		}
		if hasSQL {
			stmts = append(stmts, strings.TrimSpace(part))
		}
	}
	return stmts
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Package session opens scoped storage sessions over database/sql.
//
// A Session pins one connection from the pool for its lifetime so that
// connection state (the active role in particular) applies to every
// statement issued through it. Sessions are single-writer; the Factory is
// safe for concurrent use.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/datastore/internal/fault"
)

// roleUnsafe matches every character SET ROLE must not see.
var roleUnsafe = regexp.MustCompile(`[^A-Za-z0-9]`)

// drivers maps user-facing backend names to registered database/sql drivers.
var drivers = map[string]string{
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
	"postgres":   "pgx",
	"postgresql": "pgx",
	"pgx":        "pgx",
	"mysql":      "mysql",
}

// DriverName returns the database/sql driver registered for a backend name.
func DriverName(backend string) (string, error) {
	name, ok := drivers[backend]
	if !ok {
		return "", fmt.Errorf("unknown database driver %q", backend)
	}
	return name, nil
}

// Factory opens sessions against one database.
type Factory struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger for session lifecycle records (debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a Factory over an existing pool. The caller keeps
// ownership of db.
func NewFactory(db *sql.DB, opts ...Option) *Factory {
	f := &Factory{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open opens a pool for backend ("sqlite", "postgres", "mysql") and verifies
// it with a ping. Close the Factory to release the pool.
func Open(ctx context.Context, backend, dsn string, opts ...Option) (*Factory, error) {
	driverName, err := DriverName(backend)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}
	return NewFactory(db, opts...), nil
}

// DB returns the underlying pool.
func (f *Factory) DB() *sql.DB {
	return f.db
}

// Close closes the underlying pool.
func (f *Factory) Close() error {
	return f.db.Close()
}

// OpenSession pins a connection and, when role is non-empty, switches it to
// that role with SET ROLE. Characters outside [A-Za-z0-9] are removed from
// the role first.
//
// On any failure the connection is released before the error is returned.
// Errors are fault.KindSession.
func (f *Factory) OpenSession(ctx context.Context, role string) (*Session, error) {
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fault.New(fault.KindSession, "", "", fmt.Errorf("acquire connection: %w", err))
	}

	s := &Session{conn: conn}
	if role != "" {
		clean := SanitizeRole(role)
		if clean == "" {
			s.Close()
			return nil, fault.New(fault.KindSession, "", "", fmt.Errorf("role %q contains no usable characters", role))
		}
		if _, err := conn.ExecContext(ctx, "SET ROLE "+clean); err != nil {
			s.Close()
			return nil, fault.New(fault.KindSession, "", "", fmt.Errorf("set role %s: %w", clean, err))
		}
		s.role = clean
	}

	f.logger.DebugContext(ctx, "session opened", "role", s.role)
	return s, nil
}

// WithSession opens a session, runs fn with it and closes it. A close error
// is reported only when fn succeeded.
func (f *Factory) WithSession(ctx context.Context, role string, fn func(*Session) error) (err error) {
	s, err := f.OpenSession(ctx, role)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close session: %w", closeErr)
		}
	}()
	return fn(s)
}

// SanitizeRole strips every character outside [A-Za-z0-9] from role.
func SanitizeRole(role string) string {
	return roleUnsafe.ReplaceAllString(role, "")
}

// Session is a single connection scoped to an optional role. It is not safe
// for concurrent use.
type Session struct {
	conn   *sql.Conn
	role   string
	closed bool
}

// Role returns the sanitized role the session runs as, or "".
func (s *Session) Role() string {
	return s.role
}

// ExecContext executes a statement on the session's connection.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

// QueryContext runs a query on the session's connection.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the session's connection.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction on the session's connection.
func (s *Session) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return s.conn.BeginTx(ctx, opts)
}

// Close returns the connection to the pool. Calling Close again is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

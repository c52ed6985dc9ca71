package session

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datastore/internal/fault"
)

// statementLog records statements seen by the fake driver.
type statementLog struct {
	mu         sync.Mutex
	statements []string
}

func (l *statementLog) add(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statements = append(l.statements, q)
}

func (l *statementLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.statements...)
}

type fakeConnector struct {
	log *statementLog
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{log: c.log}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use the connector") }

type fakeConn struct {
	log *statementLog
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not supported") }

func (c *fakeConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.log.add(query)
	if strings.Contains(query, "Forbidden") {
		return nil, errors.New("permission denied to set role")
	}
	return driver.RowsAffected(0), nil
}

func newFakeFactory(t *testing.T) (*Factory, *statementLog) {
	t.Helper()
	log := &statementLog{}
	db := sql.OpenDB(&fakeConnector{log: log})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return NewFactory(db), log
}

// requireConnectionFree fails unless the single pooled connection can be
// acquired again promptly.
func requireConnectionFree(t *testing.T, f *Factory) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := f.OpenSession(ctx, "")
	require.NoError(t, err, "connection was not released")
	require.NoError(t, s.Close())
}

func TestSanitizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Role$%2&*", "Role2"},
		{"reporting", "reporting"},
		{"app_reader", "appreader"},
		{"x; DROP TABLE events", "xDROPTABLEevents"},
		{"日本", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeRole(tt.in), tt.in)
	}
}

func TestOpenSession_SetsSanitizedRole(t *testing.T) {
	f, log := newFakeFactory(t)

	s, err := f.OpenSession(context.Background(), "Role$%2&*")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"SET ROLE Role2"}, log.all())
	assert.Equal(t, "Role2", s.Role())
}

func TestOpenSession_NoRole(t *testing.T) {
	f, log := newFakeFactory(t)

	s, err := f.OpenSession(context.Background(), "")
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, log.all())
	assert.Equal(t, "", s.Role())
}

func TestOpenSession_RoleFailureReleasesConnection(t *testing.T) {
	f, _ := newFakeFactory(t)

	s, err := f.OpenSession(context.Background(), "Forbidden")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, fault.IsSession(err))
	assert.Contains(t, err.Error(), "permission denied")

	requireConnectionFree(t, f)
}

func TestOpenSession_UnusableRole(t *testing.T) {
	f, log := newFakeFactory(t)

	_, err := f.OpenSession(context.Background(), "$%&")
	require.Error(t, err)
	assert.True(t, fault.IsSession(err))
	assert.Empty(t, log.all())

	requireConnectionFree(t, f)
}

func TestOpenSession_Cancelled(t *testing.T) {
	f, _ := newFakeFactory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.OpenSession(ctx, "")
	require.Error(t, err)
	assert.True(t, fault.IsSession(err))
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	f, _ := newFakeFactory(t)

	s, err := f.OpenSession(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestWithSession(t *testing.T) {
	f, log := newFakeFactory(t)

	var seen *Session
	err := f.WithSession(context.Background(), "reader", func(s *Session) error {
		seen = s
		_, err := s.ExecContext(context.Background(), "UPDATE events SET name = 'x'")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SET ROLE reader", "UPDATE events SET name = 'x'"}, log.all())
	assert.True(t, seen.closed)

	requireConnectionFree(t, f)
}

func TestWithSession_ReturnsCallbackError(t *testing.T) {
	f, _ := newFakeFactory(t)
	boom := errors.New("boom")

	err := f.WithSession(context.Background(), "", func(*Session) error { return boom })
	assert.ErrorIs(t, err, boom)

	requireConnectionFree(t, f)
}

func TestWithSession_OpenFailureSkipsCallback(t *testing.T) {
	f, _ := newFakeFactory(t)
	called := false

	err := f.WithSession(context.Background(), "Forbidden", func(*Session) error {
		called = true
		return nil
	})
	assert.True(t, fault.IsSession(err))
	assert.False(t, called)
}

func TestDriverName(t *testing.T) {
	for backend, want := range map[string]string{
		"sqlite":   "sqlite3",
		"postgres": "pgx",
		"pgx":      "pgx",
		"mysql":    "mysql",
	} {
		got, err := DriverName(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := DriverName("oracle")
	assert.ErrorContains(t, err, `unknown database driver "oracle"`)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	f, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer f.Close()

	err = f.WithSession(ctx, "", func(s *Session) error {
		if _, err := s.ExecContext(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
			return err
		}
		tx, err := s.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO kv VALUES ('a', 'b')"); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	})
	require.NoError(t, err)

	s, err := f.OpenSession(ctx, "")
	require.NoError(t, err)
	defer s.Close()
	var v string
	require.NoError(t, s.QueryRowContext(ctx, "SELECT v FROM kv WHERE k = 'a'").Scan(&v))
	assert.Equal(t, "b", v)
}

func TestOpen_SQLiteRejectsRoles(t *testing.T) {
	ctx := context.Background()
	f, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.OpenSession(ctx, "reader")
	require.Error(t, err)
	assert.True(t, fault.IsSession(err))
	assert.Equal(t, 0, f.DB().Stats().InUse)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for backend, want := range map[string]Dialect{
		"sqlite":   SQLite,
		"sqlite3":  SQLite,
		"postgres": Postgres,
		"pgx":      Postgres,
		"mysql":    MySQL,
	} {
		got, err := DialectFor(backend)
		require.NoError(t, err, backend)
		assert.Equal(t, want, got, backend)
	}

	_, err := DialectFor("mssql")
	assert.Error(t, err)
}

func TestDialect_Rebind(t *testing.T) {
	q := "UPDATE events SET name = ?, tags = ? WHERE id = ?"

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, "UPDATE events SET name = $1, tags = $2 WHERE id = $3", Postgres.Rebind(q))
}

func TestDialect_String(t *testing.T) {
	assert.Equal(t, "sqlite", SQLite.String())
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "mysql", MySQL.String())
	assert.Equal(t, "unknown", Dialect(9).String())
}

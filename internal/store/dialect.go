package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavor of a backend.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
	MySQL
)

// DialectFor returns the dialect for a backend name accepted by session.Open.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("unknown database driver %q", backend)
	}
}

// String returns the dialect name, which is also its schema file name.
func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return "unknown"
	}
}

// Rebind rewrites '?' placeholders into the dialect's form ($1, $2, ... for
// Postgres). Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/roach88/datastore/internal/session"
)

// createTestStore creates a new SQLite store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// openTestSession opens a role-less session closed at test cleanup.
func openTestSession(t *testing.T, s *Store) *session.Session {
	t.Helper()
	sess, err := s.Sessions().OpenSession(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

// getTableColumns returns the column names of a SQLite table.
func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table info for %s: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

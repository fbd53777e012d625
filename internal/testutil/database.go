package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/infrastructure/sqlite"
)

// SetupTestDB opens a throwaway in-memory SQLite state database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.NewConnection(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// SetupMySQLTestDB expects a MySQL database on localhost:3306 named
// 'storefront_test' and skips the test when it is not reachable.
func SetupMySQLTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "root:@tcp(localhost:3306)/storefront_test"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("test database not available: %v", err)
	}

	t.Cleanup(func() {
		if _, err := db.Exec("DELETE FROM client_state"); err != nil {
			t.Logf("failed to clean table client_state: %v", err)
		}
		_ = db.Close()
	})

	return db
}

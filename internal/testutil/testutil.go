package testutil

import (
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-results-go/pkg/database"
)

// OpenSQLite opens a private in-memory SQLite database named after the test.
// A single connection keeps the database alive and avoids shared-cache table locks.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(database.Config{
		Driver:   database.DriverSQLite,
		DSN:      "file:" + name + "?mode=memory&cache=shared",
		MaxConns: 1,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

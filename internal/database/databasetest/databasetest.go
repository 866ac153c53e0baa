// Package databasetest opens throwaway in-memory databases for tests.
package databasetest

import (
	"context"
	"fmt"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/tasktracker/internal/database"
)

// Open returns a migrated in-memory SQLite database private to the test.
func Open(t testing.TB) *database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	raw, err := sqlx.Open(dialect.SQLite, dsn)
	require.NoError(t, err)

	// A single connection keeps the shared in-memory database alive and
	// serializes writers the way row locks do on PostgreSQL.
	raw.SetMaxOpenConns(1)

	db := database.Wrap(raw)
	require.NoError(t, database.Migrate(context.Background(), db))

	t.Cleanup(func() {
		_ = raw.Close()
	})

	return db
}

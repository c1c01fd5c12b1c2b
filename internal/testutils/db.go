// Package testutils provides database testing helpers with transaction
// isolation. Each integration test runs in its own transaction, rolled back
// when it completes, so tests can run in parallel against the same database
// without cleanup.
//
// Integration tests are gated on the DATABASE_URL environment variable and
// skip when it is unset.
package testutils

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/mnemosyne-app/mnemo-api/migrations"
)

// migrationsRunOnce ensures the schema is migrated once per test binary.
var migrationsRunOnce sync.Once

// GetTestDatabaseURL returns the integration test database URL, or "" when
// integration tests should be skipped.
func GetTestDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// GetTestDB opens a connection to the integration test database and brings
// its schema up to date. The test skips when DATABASE_URL is unset and the
// connection is closed automatically at test end.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	migrationsRunOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		require.NoError(t, goose.SetDialect("postgres"))
		require.NoError(t, goose.Up(db, "."), "failed to migrate test database")
	})

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, keeping
// the database clean for other tests.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin test transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

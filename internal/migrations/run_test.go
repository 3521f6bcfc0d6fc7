package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) *sql.DB {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return db
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "migrations")
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	db := getTestDB(t)

	err := Run(db, getMigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{"users", "courses", "subscription_events"} {
		require.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public'
			AND tablename = 'subscription_events'
			AND indexname = 'idx_subscription_events_user_uid'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "index should exist")

	var adminCount int
	err = db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'admin' AND role = 'admin'").Scan(&adminCount)
	require.NoError(t, err)
	require.Equal(t, 1, adminCount)

	var published int
	err = db.QueryRow("SELECT COUNT(*) FROM courses WHERE published").Scan(&published)
	require.NoError(t, err)
	require.Equal(t, 5, published)
}

func TestMigrationIdempotency(t *testing.T) {
	db := getTestDB(t)
	migrationsPath := getMigrationsPath(t)

	require.NoError(t, Run(db, migrationsPath))
	require.NoError(t, Run(db, migrationsPath))

	var adminCount int
	err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'admin'").Scan(&adminCount)
	require.NoError(t, err)
	require.Equal(t, 1, adminCount)
}

// Package pgtest opens a migrated Postgres pool for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/dwikikusuma/shoping-cart/migrations"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const EnvURL = "CART_TEST_DATABASE_URL"

// Open skips the test unless CART_TEST_DATABASE_URL is set. Tests share the
// database, so they must use fresh ids rather than truncating tables.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, postgres.Config{URL: url, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, migrations.FS, "."))
	return pool
}

package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CountriesTable is created by SeedCountries.
const CountriesTable = "ogcapi_test_countries"

// ConnString returns TEST_DATABASE or skips the test when it is unset.
func ConnString(t testing.TB) string {
	t.Helper()
	connString := os.Getenv("TEST_DATABASE")
	if connString == "" {
		t.Skip("TEST_DATABASE not set")
	}
	return connString
}

// ParseConfig returns a test pool config with notice logging
func ParseConfig(t testing.TB) *pgxpool.Config {
	config, err := pgxpool.ParseConfig(ConnString(t))
	require.NoError(t, err)

	config.ConnConfig.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		t.Logf("PostgreSQL %s: %s", n.Severity, n.Message)
	}
	config.MaxConns = 2

	return config
}

// Pool creates a connection pool for testing that is closed on cleanup
func Pool(ctx context.Context, t testing.TB) *pgxpool.Pool {
	pool, err := pgxpool.NewWithConfig(ctx, ParseConfig(t))
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

// SeedCountries creates CountriesTable with five point features, ids 1 to 5,
// placed at (id, id). The table is dropped on cleanup.
func SeedCountries(ctx context.Context, t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`DROP TABLE IF EXISTS ` + CountriesTable,
		`CREATE TABLE ` + CountriesTable + ` (
			ogc_fid integer PRIMARY KEY,
			name text NOT NULL,
			pop_est double precision,
			wkb_geometry geometry(Point, 4326)
		)`,
		`INSERT INTO ` + CountriesTable + ` (ogc_fid, name, pop_est, wkb_geometry)
			SELECT i, 'country ' || i, i * 1000, ST_SetSRID(ST_MakePoint(i, i), 4326)
			FROM generate_series(1, 5) AS i`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = pool.Exec(ctx, `DROP TABLE IF EXISTS `+CountriesTable)
	})
}

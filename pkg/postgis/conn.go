package postgis

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Conn is the subset of a pgx connection used by the feature store. It is
// satisfied by *pgxpool.Pool, *pgx.Conn and test fakes.
type Conn interface {
	// Query executes sql and returns the resulting rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger checks the liveness of a database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

package postgis

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeConn answers count queries with count, single feature lookups with
// feature (pgx.ErrNoRows when nil) and everything else with rows.
type fakeConn struct {
	rows     [][]any
	count    int64
	feature  []any
	queryErr error
	rowErr   error
	pingErr  error
	queries  []Query
}

func (c *fakeConn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.queries = append(c.queries, Query{SQL: sql, Args: args})
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return &fakeRows{rows: c.rows, index: -1}, nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	c.queries = append(c.queries, Query{SQL: sql, Args: args})
	switch {
	case c.rowErr != nil:
		return fakeRow{err: c.rowErr}
	case strings.HasPrefix(sql, "SELECT count(*)"):
		return fakeRow{values: []any{c.count}}
	case c.feature == nil:
		return fakeRow{err: pgx.ErrNoRows}
	default:
		return fakeRow{values: c.feature}
	}
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", v, target.Type())
		}
		target.Set(value)
	}
	return nil
}

type fakeRows struct {
	rows  [][]any
	index int
	err   error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.index++
	return r.index < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.index], dest)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.index], nil
}

// featureRow builds a row shaped like the output of the feature queries.
func featureRow(id int64, geometry, properties string) []any {
	var g, p []byte
	if geometry != "" {
		g = []byte(geometry)
	}
	if properties != "" {
		p = []byte(properties)
	}
	return []any{"Feature", g, p, id}
}

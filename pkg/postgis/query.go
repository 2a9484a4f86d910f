package postgis

import (
	"fmt"
	"math"
	"strings"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/features"
)

// SRID of bbox coordinates.
const SRID = 4326

// Query is a parameterized SQL statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

type queryBuilder struct {
	args      []any
	nextIndex int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{nextIndex: 1}
}

func (qb *queryBuilder) placeholder() string {
	placeholder := fmt.Sprintf("$%d", qb.nextIndex)
	qb.nextIndex++
	return placeholder
}

// bind records v as the next argument and returns its placeholder.
func (qb *queryBuilder) bind(v any) string {
	qb.args = append(qb.args, v)
	return qb.placeholder()
}

// Keyset pages through a collection by a sortable key column. The requested
// offset is used as an exclusive lower bound on the key rather than a row
// count, so pages are only complete when keys are dense and ascending.
type Keyset struct {
	Column string
}

// Predicate returns the lower bound condition for the given placeholder.
func (k Keyset) Predicate(placeholder string) string {
	return fmt.Sprintf("%s > %s", k.Column, placeholder)
}

// OrderBy returns the ordering clause matching the predicate.
func (k Keyset) OrderBy() string {
	return "order by " + k.Column
}

// propertiesSQL returns the json_build_object argument list for the
// configured properties, in configured order.
func propertiesSQL(c config.CollectionConfig) string {
	pairs := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		pairs[i] = fmt.Sprintf("'%s', %s", p, p)
	}
	return strings.Join(pairs, ", ")
}

func selectFeatureSQL(c config.CollectionConfig) string {
	return fmt.Sprintf(
		"SELECT 'Feature' as type, ST_AsGeoJSON(%s)::jsonb as geometry, json_build_object(%s) as properties, %s as id from %s",
		c.GeometryColumn, propertiesSQL(c), c.IDColumn, c.Table,
	)
}

// whereSQL builds the filter shared by the list and count queries: an
// optional 2D bbox intersection followed by the keyset lower bound.
func whereSQL(qb *queryBuilder, c config.CollectionConfig, p features.Params) string {
	var clauses []string

	if bbox, ok := p.SpatialFilter(); ok {
		clauses = append(clauses, fmt.Sprintf(
			"ST_Intersects(%s, ST_MakeEnvelope(%s, %s, %s, %s, %d))",
			c.GeometryColumn,
			qb.bind(bbox[0]), qb.bind(bbox[1]), qb.bind(bbox[2]), qb.bind(bbox[3]),
			SRID,
		))
	}

	keyset := Keyset{Column: c.IDColumn}
	clauses = append(clauses, keyset.Predicate(qb.bind(toInt64(p.OffsetOrDefault()))))

	return "WHERE " + strings.Join(clauses, " AND ")
}

// SingleFeatureQuery selects one feature by exact id.
func SingleFeatureQuery(c config.CollectionConfig, id int64) Query {
	qb := newQueryBuilder()
	sql := fmt.Sprintf("%s WHERE %s = %s", selectFeatureSQL(c), c.IDColumn, qb.bind(id))
	return Query{SQL: sql, Args: qb.args}
}

// ListQuery selects one page of features. limit is the effective page size.
func ListQuery(c config.CollectionConfig, p features.Params, limit uint64) Query {
	qb := newQueryBuilder()
	where := whereSQL(qb, c, p)
	keyset := Keyset{Column: c.IDColumn}
	sql := fmt.Sprintf("%s %s %s LIMIT %s", selectFeatureSQL(c), where, keyset.OrderBy(), qb.bind(toInt64(limit)))
	return Query{SQL: sql, Args: qb.args}
}

// CountQuery counts the rows matching the filter of p. Limit is ignored; the
// offset stays in place as the key lower bound.
func CountQuery(c config.CollectionConfig, p features.Params) Query {
	qb := newQueryBuilder()
	sql := fmt.Sprintf("SELECT count(*) from %s %s", c.Table, whereSQL(qb, c, p.ForCount()))
	return Query{SQL: sql, Args: qb.args}
}

// toInt64 clamps v into the range of a Postgres bigint.
func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

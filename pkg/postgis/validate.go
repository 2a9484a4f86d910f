package postgis

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v5"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/features"
)

// CollectionQueries returns the statements generated for a collection: the
// single feature lookup, a first page with and without a bbox filter and the
// matching count query.
func CollectionQueries(c config.CollectionConfig) map[string]Query {
	bbox := features.Params{BBox: features.BBox{-180, -90, 180, 90}}
	return map[string]Query{
		"feature":    SingleFeatureQuery(c, 1),
		"list":       ListQuery(c, features.Params{}, features.DefaultLimit),
		"list_bbox":  ListQuery(c, bbox, features.DefaultLimit),
		"count":      CountQuery(c, features.Params{}),
		"count_bbox": CountQuery(c, bbox),
	}
}

// ValidateCollection parses every statement generated for c and checks that
// each is exactly one SELECT. Table and column names are written into SQL
// verbatim, so this catches misconfigured identifiers before they reach the
// database.
func ValidateCollection(c config.CollectionConfig) error {
	for name, q := range CollectionQueries(c) {
		if err := ValidateSelect(q.SQL); err != nil {
			return fmt.Errorf("%s query: %w", name, err)
		}
	}
	return nil
}

// ValidateSelect reports whether sql parses as a single SELECT statement.
func ValidateSelect(sql string) error {
	tree, err := pg_query.Parse(sql)
	if err != nil {
		return fmt.Errorf("parse %q: %w", sql, err)
	}
	if n := len(tree.GetStmts()); n != 1 {
		return fmt.Errorf("expected a single statement, got %d", n)
	}
	if tree.GetStmts()[0].GetStmt().GetSelectStmt() == nil {
		return fmt.Errorf("expected a SELECT statement: %q", sql)
	}
	return nil
}

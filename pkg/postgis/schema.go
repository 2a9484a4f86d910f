package postgis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edgeflare/ogcapi/pkg/config"
)

// Column describes a table column as reported by information_schema.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	UDTName  string `json:"udt_name"`
}

// splitTable splits an optionally schema-qualified table name. An empty
// schema means the connection's current schema.
func splitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

func queryColumns(ctx context.Context, conn Conn, table string) (map[string]Column, error) {
	schema, name := splitTable(table)
	rows, err := conn.Query(ctx, `
		SELECT c.column_name, c.data_type, c.udt_name
		FROM information_schema.columns c
		WHERE c.table_schema = coalesce(nullif($1, ''), current_schema())
			AND c.table_name = $2
		ORDER BY c.ordinal_position`, schema, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]Column)
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.UDTName); err != nil {
			return nil, err
		}
		cols[col.Name] = col
	}
	return cols, rows.Err()
}

// VerifyCollections checks that the table and every configured column of
// each collection exist, and that geometry columns hold PostGIS geometries.
// All problems are reported together.
func VerifyCollections(ctx context.Context, conn Conn, cfg *config.Config) error {
	var errs []error
	for _, id := range cfg.CollectionIDs() {
		c := cfg.Collections[id]
		cols, err := queryColumns(ctx, conn, c.Table)
		if err != nil {
			return fmt.Errorf("query columns of %s: %w", c.Table, err)
		}
		if len(cols) == 0 {
			errs = append(errs, fmt.Errorf("collection %q: table %s does not exist", id, c.Table))
			continue
		}

		required := append([]string{c.IDColumn, c.GeometryColumn}, c.Properties...)
		for _, name := range required {
			if _, ok := cols[name]; !ok {
				errs = append(errs, fmt.Errorf("collection %q: column %s.%s does not exist", id, c.Table, name))
			}
		}

		if geom, ok := cols[c.GeometryColumn]; ok && geom.UDTName != "geometry" && geom.UDTName != "geography" {
			errs = append(errs, fmt.Errorf("collection %q: column %s.%s is %s, not a geometry", id, c.Table, c.GeometryColumn, geom.UDTName))
		}
	}
	return errors.Join(errs...)
}

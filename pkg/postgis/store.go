// Package postgis implements the feature store on top of PostgreSQL/PostGIS.
//
// SQL is generated per collection from its configuration. Table and column
// names are trusted and written verbatim; every request value is bound as a
// positional argument.
package postgis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/features"
	"github.com/edgeflare/ogcapi/pkg/metrics"
)

// Store serves features of the configured collections from PostGIS tables.
type Store struct {
	conn   Conn
	cfg    *config.Config
	logger *zap.Logger
}

var _ features.Store = (*Store)(nil)

// NewStore returns a Store reading through conn. cfg is shared read-only.
func NewStore(conn Conn, cfg *config.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{conn: conn, cfg: cfg, logger: logger}
}

func (s *Store) collection(id string) (config.CollectionConfig, error) {
	c, ok := s.cfg.Collection(id)
	if !ok {
		return config.CollectionConfig{}, features.NotFound("Collection %s not found", id)
	}
	return c, nil
}

func (s *Store) defaultLimit() uint64 {
	if s.cfg.Limits.Default > 0 {
		return s.cfg.Limits.Default
	}
	return features.DefaultLimit
}

// GetFeatures runs the count query and then the page query. The two run
// independently, so under concurrent writes they may see different snapshots.
func (s *Store) GetFeatures(ctx context.Context, collectionID string, params features.Params) (*features.Page, error) {
	c, err := s.collection(collectionID)
	if err != nil {
		return nil, err
	}

	matched, err := s.count(ctx, collectionID, CountQuery(c, params))
	if err != nil {
		return nil, err
	}

	list := ListQuery(c, params, params.LimitOr(s.defaultLimit()))
	start := time.Now()
	rows, err := s.conn.Query(ctx, list.SQL, list.Args...)
	if err != nil {
		s.observe(collectionID, "list", start, err)
		return nil, features.Internal(err)
	}
	fs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*geojson.Feature, error) {
		return scanFeature(row)
	})
	s.observe(collectionID, "list", start, err)
	if err != nil {
		return nil, features.Internal(err)
	}

	return features.NewPage(fs, matched), nil
}

func (s *Store) count(ctx context.Context, collectionID string, q Query) (uint64, error) {
	start := time.Now()
	var n int64
	err := s.conn.QueryRow(ctx, q.SQL, q.Args...).Scan(&n)
	s.observe(collectionID, "count", start, err)
	if err != nil {
		return 0, features.Internal(err)
	}
	if n < 0 {
		n = 0
	}
	return uint64(n), nil
}

// GetFeature looks up a single feature. A missing row is reported as NotFound.
func (s *Store) GetFeature(ctx context.Context, collectionID, featureID string) (*geojson.Feature, error) {
	c, err := s.collection(collectionID)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(featureID, 10, 64)
	if err != nil {
		return nil, features.BadRequest("Invalid feature ID")
	}

	q := SingleFeatureQuery(c, id)
	start := time.Now()
	f, err := scanFeature(s.conn.QueryRow(ctx, q.SQL, q.Args...))
	if errors.Is(err, pgx.ErrNoRows) {
		s.observe(collectionID, "feature", start, nil)
		return nil, features.NotFound("Feature %s not found in collection %s", featureID, collectionID)
	}
	s.observe(collectionID, "feature", start, err)
	if err != nil {
		return nil, features.Internal(err)
	}
	return f, nil
}

// Ping checks the database connection when the underlying Conn supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.conn.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) observe(collectionID, query string, start time.Time, err error) {
	metrics.ObserveQuery(collectionID, query, start, err)
	if err != nil {
		s.logger.Error("query failed",
			zap.String("collection", collectionID),
			zap.String("query", query),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("query",
		zap.String("collection", collectionID),
		zap.String("query", query),
		zap.Duration("duration", time.Since(start)),
	)
}

// scanFeature maps a (type, geometry, properties, id) row onto a feature.
func scanFeature(row pgx.Row) (*geojson.Feature, error) {
	var (
		typ        string
		geometry   []byte
		properties []byte
		id         int64
	)
	if err := row.Scan(&typ, &geometry, &properties, &id); err != nil {
		return nil, err
	}

	f := geojson.NewFeature(nil)
	f.ID = id

	if len(geometry) > 0 && !bytes.Equal(geometry, []byte("null")) {
		g, err := geojson.UnmarshalGeometry(geometry)
		if err != nil {
			return nil, fmt.Errorf("decode geometry of feature %d: %w", id, err)
		}
		f.Geometry = g.Geometry()
	}

	if len(properties) > 0 {
		if err := json.Unmarshal(properties, &f.Properties); err != nil {
			return nil, fmt.Errorf("decode properties of feature %d: %w", id, err)
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
	}

	return f, nil
}

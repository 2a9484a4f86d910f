package postgis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/features"
)

func testConfig() *config.Config {
	return &config.Config{
		URLBase:     "http://localhost:3000",
		Collections: map[string]config.CollectionConfig{"countries": testCollection()},
	}
}

func TestStoreGetFeatures(t *testing.T) {
	ctx := context.Background()

	t.Run("page", func(t *testing.T) {
		conn := &fakeConn{
			count: 177,
			rows: [][]any{
				featureRow(1, `{"type":"MultiPolygon","coordinates":[[[[180,-16.07],[180,-16.55],[179.36,-16.8],[180,-16.07]]]]}`, `{"name":"Fiji","pop_est":920938}`),
				featureRow(2, `{"type":"Point","coordinates":[33.9,-6.4]}`, `{"name":"Tanzania","pop_est":53950935}`),
			},
		}
		store := NewStore(conn, testConfig(), zap.NewNop())

		page, err := store.GetFeatures(ctx, "countries", features.Params{Limit: features.Uint64(2)})
		require.NoError(t, err)

		assert.EqualValues(t, 177, page.NumberMatched)
		assert.EqualValues(t, 2, page.NumberReturned)
		require.Len(t, page.Features, 2)

		fiji := page.Features[0]
		assert.Equal(t, int64(1), fiji.ID)
		assert.IsType(t, orb.MultiPolygon{}, fiji.Geometry)
		assert.Len(t, fiji.Properties, 2)
		assert.Equal(t, "Fiji", fiji.Properties["name"])
		assert.Equal(t, 920938.0, fiji.Properties["pop_est"])
		assert.Equal(t, orb.Point{33.9, -6.4}, page.Features[1].Geometry)

		require.Len(t, conn.queries, 2)
		assert.Equal(t, "SELECT count(*) from naturalearth_lowres WHERE ogc_fid > $1", conn.queries[0].SQL)
		assert.Equal(t, []any{int64(0)}, conn.queries[0].Args)
		assert.Equal(t, []any{int64(0), int64(2)}, conn.queries[1].Args)
	})

	t.Run("count is relative to offset", func(t *testing.T) {
		conn := &fakeConn{count: 3}
		store := NewStore(conn, testConfig(), nil)

		_, err := store.GetFeatures(ctx, "countries", features.Params{Offset: features.Uint64(174), BBox: features.BBox{0, 0, 10, 10}})
		require.NoError(t, err)
		require.Len(t, conn.queries, 2)
		assert.Equal(t, []any{0.0, 0.0, 10.0, 10.0, int64(174)}, conn.queries[0].Args)
		assert.Equal(t, []any{0.0, 0.0, 10.0, 10.0, int64(174), int64(10)}, conn.queries[1].Args)
	})

	t.Run("configured default limit", func(t *testing.T) {
		conn := &fakeConn{}
		cfg := testConfig()
		cfg.Limits.Default = 25
		_, err := NewStore(conn, cfg, nil).GetFeatures(ctx, "countries", features.Params{})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(0), int64(25)}, conn.queries[1].Args)
	})

	t.Run("empty page", func(t *testing.T) {
		page, err := NewStore(&fakeConn{}, testConfig(), nil).GetFeatures(ctx, "countries", features.Params{})
		require.NoError(t, err)
		assert.NotNil(t, page.Features)
		assert.Empty(t, page.Features)
		assert.Zero(t, page.NumberMatched)
	})

	t.Run("unknown collection", func(t *testing.T) {
		conn := &fakeConn{}
		_, err := NewStore(conn, testConfig(), nil).GetFeatures(ctx, "rivers", features.Params{})
		assert.Equal(t, features.KindNotFound, features.KindOf(err))
		assert.EqualError(t, err, "Collection rivers not found")
		assert.Empty(t, conn.queries)
	})

	t.Run("query error", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		conn := &fakeConn{queryErr: errors.New("connection refused")}
		_, err := NewStore(conn, testConfig(), zap.New(core)).GetFeatures(ctx, "countries", features.Params{})
		assert.Equal(t, features.KindInternal, features.KindOf(err))
		assert.ErrorContains(t, err, "connection refused")
		assert.Equal(t, 1, logs.FilterMessage("query failed").Len())
	})

	t.Run("count error", func(t *testing.T) {
		conn := &fakeConn{rowErr: errors.New("relation does not exist")}
		_, err := NewStore(conn, testConfig(), nil).GetFeatures(ctx, "countries", features.Params{})
		assert.Equal(t, features.KindInternal, features.KindOf(err))
		assert.Len(t, conn.queries, 1)
	})

	t.Run("bad geometry", func(t *testing.T) {
		conn := &fakeConn{rows: [][]any{featureRow(1, `{"type":"Blob"}`, `{}`)}}
		_, err := NewStore(conn, testConfig(), nil).GetFeatures(ctx, "countries", features.Params{})
		assert.Equal(t, features.KindInternal, features.KindOf(err))
	})
}

func TestStoreGetFeature(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		conn := &fakeConn{feature: featureRow(5, `{"type":"Point","coordinates":[1,2]}`, `{"name":"Somewhere","pop_est":null}`)}
		f, err := NewStore(conn, testConfig(), nil).GetFeature(ctx, "countries", "5")
		require.NoError(t, err)
		assert.Equal(t, int64(5), f.ID)
		assert.Equal(t, orb.Point{1, 2}, f.Geometry)
		assert.Contains(t, f.Properties, "pop_est")
		assert.Nil(t, f.Properties["pop_est"])
		assert.Equal(t, []any{int64(5)}, conn.queries[0].Args)

		b, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":5,"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"Somewhere","pop_est":null}}`, string(b))
	})

	t.Run("null geometry", func(t *testing.T) {
		conn := &fakeConn{feature: featureRow(6, "", `{"name":"Nowhere"}`)}
		f, err := NewStore(conn, testConfig(), nil).GetFeature(ctx, "countries", "6")
		require.NoError(t, err)
		assert.Nil(t, f.Geometry)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewStore(&fakeConn{}, testConfig(), nil).GetFeature(ctx, "countries", "999")
		assert.Equal(t, features.KindNotFound, features.KindOf(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		conn := &fakeConn{}
		_, err := NewStore(conn, testConfig(), nil).GetFeature(ctx, "countries", "abc")
		assert.Equal(t, features.KindBadRequest, features.KindOf(err))
		assert.EqualError(t, err, "Invalid feature ID")
		assert.Empty(t, conn.queries)
	})

	t.Run("unknown collection wins over bad id", func(t *testing.T) {
		_, err := NewStore(&fakeConn{}, testConfig(), nil).GetFeature(ctx, "rivers", "abc")
		assert.Equal(t, features.KindNotFound, features.KindOf(err))
	})

	t.Run("database error", func(t *testing.T) {
		conn := &fakeConn{rowErr: errors.New("timeout")}
		_, err := NewStore(conn, testConfig(), nil).GetFeature(ctx, "countries", "1")
		assert.Equal(t, features.KindInternal, features.KindOf(err))
	})
}

func TestStorePing(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewStore(&fakeConn{}, testConfig(), nil).Ping(ctx))
	assert.Error(t, NewStore(&fakeConn{pingErr: errors.New("down")}, testConfig(), nil).Ping(ctx))
}

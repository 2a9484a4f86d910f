package fgb

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var magic = []byte{0x66, 0x67, 0x62, 0x03, 0x66, 0x67, 0x62, 0x00}

func countries() []*geojson.Feature {
	fiji := geojson.NewFeature(orb.MultiPolygon{{{{178, -17}, {179, -17}, {179, -16}, {178, -17}}}})
	fiji.ID = int64(1)
	fiji.Properties["name"] = "Fiji"
	fiji.Properties["pop_est"] = 920938.0

	tanzania := geojson.NewFeature(orb.MultiPolygon{{{{33, -1}, {34, -1}, {34, 0}, {33, -1}}}})
	tanzania.ID = int64(2)
	tanzania.Properties["name"] = "Tanzania"
	tanzania.Properties["pop_est"] = 53950935.0

	return []*geojson.Feature{fiji, tanzania}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, countries(), Options{Name: "countries", Columns: []string{"name", "pop_est"}})
	require.NoError(t, err)

	data := buf.Bytes()
	require.Greater(t, len(data), len(magic))
	assert.Equal(t, magic, data[:len(magic)])

	fgb, err := flatgeobuf.NewWithData(data)
	require.NoError(t, err)
	h := fgb.Header()
	require.NotNil(t, h)

	assert.Equal(t, "countries", string(h.Name()))
	assert.Equal(t, flattypes.GeometryTypeMultiPolygon, h.GeometryType())
	require.Equal(t, 2, h.ColumnsLength())

	var col flattypes.Column
	require.True(t, h.Columns(&col, 0))
	assert.Equal(t, "name", string(col.Name()))
	assert.Equal(t, flattypes.ColumnTypeString, col.Type())
	require.True(t, h.Columns(&col, 1))
	assert.Equal(t, "pop_est", string(col.Name()))
	assert.Equal(t, flattypes.ColumnTypeDouble, col.Type())

	var crs flattypes.Crs
	require.NotNil(t, h.Crs(&crs))
	assert.EqualValues(t, EPSG, crs.Code())
}

func TestGeometryType(t *testing.T) {
	t.Run("mixed", func(t *testing.T) {
		fs := []*geojson.Feature{geojson.NewFeature(orb.Point{1, 2}), geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}})}
		assert.Equal(t, flattypes.GeometryTypeUnknown, geometryType(fs))
	})

	t.Run("skips null geometry", func(t *testing.T) {
		fs := []*geojson.Feature{geojson.NewFeature(nil), geojson.NewFeature(orb.Point{1, 2})}
		assert.Equal(t, flattypes.GeometryTypePoint, geometryType(fs))
	})
}

func TestColumnTypes(t *testing.T) {
	a := geojson.NewFeature(orb.Point{0, 0})
	a.Properties["name"] = "a"
	a.Properties["code"] = 1.0
	a.Properties["tags"] = []any{"x"}
	a.Properties["flag"] = true

	b := geojson.NewFeature(orb.Point{1, 1})
	b.Properties["name"] = nil
	b.Properties["code"] = "B"
	b.Properties["flag"] = false

	types := columnTypes([]*geojson.Feature{a, b}, []string{"name", "code", "tags", "flag", "missing"})
	assert.Equal(t, []flattypes.ColumnType{
		flattypes.ColumnTypeString,
		flattypes.ColumnTypeJson,
		flattypes.ColumnTypeJson,
		flattypes.ColumnTypeBool,
		flattypes.ColumnTypeString,
	}, types)
}

func TestEncodeProperties(t *testing.T) {
	props := geojson.Properties{"name": "Fiji", "pop_est": 2.5, "ignored": "x", "null": nil}
	columns := []string{"null", "name", "pop_est"}
	types := []flattypes.ColumnType{flattypes.ColumnTypeString, flattypes.ColumnTypeString, flattypes.ColumnTypeDouble}

	got := encodeProperties(props, columns, types)

	var want []byte
	want = binary.LittleEndian.AppendUint16(want, 1)
	want = binary.LittleEndian.AppendUint32(want, 4)
	want = append(want, "Fiji"...)
	want = binary.LittleEndian.AppendUint16(want, 2)
	want = binary.LittleEndian.AppendUint64(want, math.Float64bits(2.5))

	assert.Equal(t, want, got)
	assert.Nil(t, encodeProperties(nil, columns, types))
}

func TestEncodeGeometry(t *testing.T) {
	tests := []struct {
		name string
		geom orb.Geometry
		ok   bool
	}{
		{"point", orb.Point{1, 2}, true},
		{"polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, true},
		{"bound", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, true},
		{"collection", orb.Collection{orb.Point{1, 2}, orb.LineString{{0, 0}, {1, 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := encodeGeometry(tt.geom, flatbuffers.NewBuilder(256))
			assert.Equal(t, tt.ok, g != nil)
		})
	}
}

func TestFlattenParts(t *testing.T) {
	xy, ends := flattenParts([][]orb.Point{
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
		{{0.2, 0.2}, {0.4, 0.2}, {0.2, 0.2}},
	})
	assert.Len(t, xy, 14)
	assert.Equal(t, []uint32{4, 7}, ends)
}

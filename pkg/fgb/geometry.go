package fgb

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

func fgbGeometryType(geom orb.Geometry) flattypes.GeometryType {
	switch geom.(type) {
	case orb.Point:
		return flattypes.GeometryTypePoint
	case orb.MultiPoint:
		return flattypes.GeometryTypeMultiPoint
	case orb.LineString:
		return flattypes.GeometryTypeLineString
	case orb.MultiLineString:
		return flattypes.GeometryTypeMultiLineString
	case orb.Polygon, orb.Ring, orb.Bound:
		return flattypes.GeometryTypePolygon
	case orb.MultiPolygon:
		return flattypes.GeometryTypeMultiPolygon
	case orb.Collection:
		return flattypes.GeometryTypeGeometryCollection
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// encodeGeometry returns nil for geometries FlatGeobuf has no encoding for.
func encodeGeometry(geom orb.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	g := writer.NewGeometry(builder)
	g.SetType(fgbGeometryType(geom))

	switch v := geom.(type) {
	case orb.Point:
		g.SetXY([]float64{v[0], v[1]})
	case orb.MultiPoint:
		g.SetXY(flatten(v))
	case orb.LineString:
		g.SetXY(flatten(v))
	case orb.MultiLineString:
		parts := make([][]orb.Point, len(v))
		for i, ls := range v {
			parts[i] = ls
		}
		xy, ends := flattenParts(parts)
		g.SetXY(xy)
		g.SetEnds(ends)
	case orb.Ring:
		return encodeGeometry(orb.Polygon{v}, builder)
	case orb.Bound:
		return encodeGeometry(v.ToPolygon(), builder)
	case orb.Polygon:
		setPolygon(g, v)
	case orb.MultiPolygon:
		parts := make([]writer.Geometry, 0, len(v))
		for _, poly := range v {
			pg := writer.NewGeometry(builder)
			pg.SetType(flattypes.GeometryTypePolygon)
			setPolygon(pg, poly)
			parts = append(parts, *pg)
		}
		g.SetParts(parts)
	case orb.Collection:
		parts := make([]writer.Geometry, 0, len(v))
		for _, child := range v {
			if cg := encodeGeometry(child, builder); cg != nil {
				parts = append(parts, *cg)
			}
		}
		g.SetParts(parts)
	default:
		return nil
	}
	return g
}

func setPolygon(g *writer.Geometry, poly orb.Polygon) {
	rings := make([][]orb.Point, len(poly))
	for i, r := range poly {
		rings[i] = r
	}
	xy, ends := flattenParts(rings)
	g.SetXY(xy)
	g.SetEnds(ends)
}

func flatten(points []orb.Point) []float64 {
	xy := make([]float64, 0, len(points)*2)
	for _, p := range points {
		xy = append(xy, p[0], p[1])
	}
	return xy
}

// flattenParts concatenates the coordinates of parts and returns the
// cumulative vertex count at the end of each part.
func flattenParts(parts [][]orb.Point) ([]float64, []uint32) {
	var xy []float64
	ends := make([]uint32, 0, len(parts))
	var n uint32
	for _, part := range parts {
		xy = append(xy, flatten(part)...)
		n += uint32(len(part))
		ends = append(ends, n)
	}
	return xy, ends
}

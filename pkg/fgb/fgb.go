// Package fgb encodes pages of GeoJSON features as FlatGeobuf.
//
// The output carries no spatial index; features are streamed in the order
// they were returned by the store. Property columns follow the configured
// property order of the collection.
package fgb

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

// ContentType is the media type of FlatGeobuf responses.
const ContentType = "application/flatgeobuf"

// EPSG code written into the header CRS.
const EPSG = 4326

// Options describe the dataset written into the FlatGeobuf header.
type Options struct {
	Name        string
	Description string
	// Columns lists property names in output order. Properties not listed are dropped.
	Columns []string
}

// Write encodes features to w. Features without a geometry, or with a
// geometry FlatGeobuf cannot represent, are skipped.
func Write(w io.Writer, features []*geojson.Feature, opts Options) error {
	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(geometryType(features))
	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}

	crs := writer.NewCrs(builder)
	crs.SetOrg("EPSG")
	crs.SetCode(EPSG)
	header.SetCrs(crs)

	types := columnTypes(features, opts.Columns)
	if len(opts.Columns) > 0 {
		columns := make([]*writer.Column, 0, len(opts.Columns))
		for i, name := range opts.Columns {
			col := writer.NewColumn(builder)
			col.SetName(name)
			col.SetTitle(name)
			col.SetType(types[i])
			col.SetNullable(true)
			columns = append(columns, col)
		}
		header.SetColumns(columns)
	}

	gen := &featureGenerator{features: features, columns: opts.Columns, types: types}
	_, err := writer.NewWriter(header, false, gen, nil).Write(w)
	return err
}

// featureGenerator feeds features to the FlatGeobuf writer one at a time.
type featureGenerator struct {
	features []*geojson.Feature
	columns  []string
	types    []flattypes.ColumnType
	index    int
}

func (g *featureGenerator) Generate() *writer.Feature {
	for g.index < len(g.features) {
		f := g.features[g.index]
		g.index++
		if f == nil || f.Geometry == nil {
			continue
		}

		builder := flatbuffers.NewBuilder(1024)
		geom := encodeGeometry(f.Geometry, builder)
		if geom == nil {
			continue
		}

		feature := writer.NewFeature(builder)
		feature.SetGeometry(geom)
		if props := encodeProperties(f.Properties, g.columns, g.types); len(props) > 0 {
			feature.SetProperties(props)
		}
		return feature
	}
	return nil
}

// geometryType returns the shared geometry type of all features, or Unknown
// when they differ.
func geometryType(features []*geojson.Feature) flattypes.GeometryType {
	gt := flattypes.GeometryTypeUnknown
	first := true
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		t := fgbGeometryType(f.Geometry)
		if first {
			gt, first = t, false
			continue
		}
		if t != gt {
			return flattypes.GeometryTypeUnknown
		}
	}
	return gt
}

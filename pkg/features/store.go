// Package features defines the storage-independent feature access contract:
// request parameters, page results, error kinds and the Store capability
// implemented by spatial backends such as pkg/postgis.
package features

import (
	"context"

	"github.com/paulmach/orb/geojson"
)

// Store retrieves features of configured collections.
type Store interface {
	// GetFeatures returns one page of features of the collection together with
	// the number of rows matching the filter from the page's starting key onward.
	GetFeatures(ctx context.Context, collectionID string, params Params) (*Page, error)
	// GetFeature returns a single feature by its identifier.
	GetFeature(ctx context.Context, collectionID, featureID string) (*geojson.Feature, error)
}

// Page is the result of a paginated feature query. NumberMatched is never
// smaller than NumberReturned.
type Page struct {
	Features       []*geojson.Feature
	NumberMatched  uint64
	NumberReturned uint64
}

// NewPage builds a Page, deriving NumberReturned from the feature count.
func NewPage(features []*geojson.Feature, numberMatched uint64) *Page {
	if features == nil {
		features = []*geojson.Feature{}
	}
	returned := uint64(len(features))
	return &Page{
		Features:       features,
		NumberMatched:  max(numberMatched, returned),
		NumberReturned: returned,
	}
}

package ogc

import (
	"github.com/paulmach/orb/geojson"

	"github.com/edgeflare/ogcapi/pkg/features"
)

// Link relation types used by the API.
const (
	RelSelf        = "self"
	RelNext        = "next"
	RelAlternate   = "alternate"
	RelItems       = "items"
	RelServiceDesc = "service-desc"
	RelServiceDoc  = "service-doc"
	RelConformance = "conformance"
	RelData        = "data"
)

// Media types of API responses.
const (
	MediaTypeJSON    = "application/json"
	MediaTypeGeoJSON = "application/geo+json"
	MediaTypeOpenAPI = "application/vnd.oai.openapi+json;version=3.0"
	MediaTypeHTML    = "text/html"
)

// Conformance classes of OGC API - Features - Part 1: Core implemented by the server.
var ConformanceClasses = []string{
	"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/core",
	"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/oas30",
	"http://www.opengis.net/spec/ogcapi-features-1/1.0/conf/geojson",
}

type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

type LandingPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

type Collections struct {
	Links       []Link       `json:"links"`
	Collections []Collection `json:"collections"`
}

type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// FeatureCollection is the items response: a GeoJSON FeatureCollection with
// the OGC paging members.
type FeatureCollection struct {
	Type           string             `json:"type"`
	BBox           features.BBox      `json:"bbox,omitempty"`
	Features       []*geojson.Feature `json:"features"`
	NumberMatched  uint64             `json:"numberMatched"`
	NumberReturned uint64             `json:"numberReturned"`
	Links          []Link             `json:"links"`
}

// NewFeatureCollection wraps a page of features.
func NewFeatureCollection(page *features.Page, bbox features.BBox, links []Link) *FeatureCollection {
	fs := page.Features
	if fs == nil {
		fs = []*geojson.Feature{}
	}
	return &FeatureCollection{
		Type:           "FeatureCollection",
		BBox:           bbox,
		Features:       fs,
		NumberMatched:  page.NumberMatched,
		NumberReturned: page.NumberReturned,
		Links:          links,
	}
}

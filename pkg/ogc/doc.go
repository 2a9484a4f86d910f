// Package ogc serves a subset of OGC API - Features - Part 1: Core over a
// features.Store.
//
// Routes:
//
//	Path                                          | Response
//	----------------------------------------------|--------------------------------------
//	GET /                                         | landing page
//	GET /conformance                              | conformance declaration
//	GET /collections                              | configured collections
//	GET /collections/{collectionId}               | collection descriptor
//	GET /collections/{collectionId}/items         | FeatureCollection page
//	GET /collections/{collectionId}/items/{featureId} | single Feature
//	GET /api/openapi.json                         | OpenAPI 3.0 definition
//	GET /api.html                                 | Swagger UI
//	GET /healthz                                  | database reachability
//
// Items accept the query parameters:
//
//	Parameter           | Description
//	--------------------|------------------------------------------------------------
//	?limit=10           | Page size (default: limits.default)
//	?offset=0           | Exclusive lower bound on the collection's id column
//	?bbox=x1,y1,x2,y2   | Intersecting features only; 6 component boxes are echoed but not applied
//	?f=json|fgb         | GeoJSON (default) or FlatGeobuf
//
// Accept: application/flatgeobuf selects FlatGeobuf when f is absent.
//
// Errors are answered as text/plain: 400 for invalid parameters, 404 for
// unknown collections or features and 500 for backend failures.
package ogc

package ogc

import (
	"net/http"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/fgb"
	"github.com/edgeflare/ogcapi/pkg/httputil"
)

// OpenAPIGenerator generates the OpenAPI 3.0 definition of the service from
// the configured collections.
type OpenAPIGenerator struct {
	cfg          *config.Config
	defaultLimit uint64
}

// NewOpenAPIGenerator creates a new OpenAPI generator
func NewOpenAPIGenerator(cfg *config.Config, defaultLimit uint64) *OpenAPIGenerator {
	return &OpenAPIGenerator{cfg: cfg, defaultLimit: defaultLimit}
}

// ServeHTTP implements http.Handler to serve the OpenAPI definition
func (g *OpenAPIGenerator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httputil.JSONAs(w, http.StatusOK, MediaTypeOpenAPI, g.GenerateSpecification())
}

// GenerateSpecification creates a complete OpenAPI definition
func (g *OpenAPIGenerator) GenerateSpecification() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       g.cfg.Title,
			"description": g.cfg.Description,
			"version":     config.Version,
		},
		"servers": []map[string]any{
			{
				"url":         g.cfg.BaseURL(),
				"description": "API Server",
			},
		},
		"tags": []map[string]any{
			{"name": "Capabilities", "description": "essential characteristics of this API"},
			{"name": "Data", "description": "access to data (features)"},
		},
		"paths": g.buildPaths(),
		"components": map[string]any{
			"parameters": g.buildParameters(),
			"schemas":    buildSchemas(),
			"responses":  buildResponses(),
		},
	}
}

func (g *OpenAPIGenerator) buildPaths() map[string]any {
	return map[string]any{
		"/": map[string]any{
			"get": operation("getLandingPage", "Capabilities", "Landing page",
				nil, jsonResponse("The landing page provides links to the API definition and the Conformance statements.", "LandingPage")),
		},
		"/conformance": map[string]any{
			"get": operation("getConformanceDeclaration", "Capabilities", "Information about specifications that this API conforms to",
				nil, jsonResponse("The URIs of all conformance classes supported by the server.", "Conformance")),
		},
		"/collections": map[string]any{
			"get": operation("getCollections", "Capabilities", "The feature collections in the dataset",
				nil, jsonResponse("The feature collections shared by this API.", "Collections")),
		},
		"/collections/{collectionId}": map[string]any{
			"get": operation("describeCollection", "Capabilities", "Describe the feature collection with id `collectionId`",
				[]string{"collectionId"}, jsonResponse("Information about the feature collection.", "Collection")),
		},
		"/collections/{collectionId}/items": map[string]any{
			"get": operation("getFeatures", "Data", "Fetch features of the feature collection with id `collectionId`",
				[]string{"collectionId", "limit", "offset", "bbox", "f"},
				featureResponse("The response is a document consisting of features in the collection.", "FeatureCollection")),
		},
		"/collections/{collectionId}/items/{featureId}": map[string]any{
			"get": operation("getFeature", "Data", "Fetch a single feature",
				[]string{"collectionId", "featureId", "f"},
				featureResponse("Fetch the feature with id `featureId` in the feature collection with id `collectionId`.", "Feature")),
		},
		"/healthz": map[string]any{
			"get": map[string]any{
				"operationId": "getHealth",
				"summary":     "Database reachability",
				"responses": map[string]any{
					"200": map[string]any{"description": "The database is reachable."},
					"503": map[string]any{"description": "The database is unreachable."},
				},
			},
		},
	}
}

func operation(id, tag, summary string, params []string, ok map[string]any) map[string]any {
	op := map[string]any{
		"operationId": id,
		"tags":        []string{tag},
		"summary":     summary,
		"responses": map[string]any{
			"200": ok,
			"500": ref("responses", "ServerError"),
		},
	}
	if len(params) > 0 {
		refs := make([]any, 0, len(params))
		for _, p := range params {
			refs = append(refs, ref("parameters", p))
		}
		op["parameters"] = refs
		responses := op["responses"].(map[string]any)
		responses["400"] = ref("responses", "BadRequest")
		responses["404"] = ref("responses", "NotFound")
	}
	return op
}

func jsonResponse(description, schema string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			MediaTypeJSON: map[string]any{"schema": ref("schemas", schema)},
		},
	}
}

func featureResponse(description, schema string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			MediaTypeGeoJSON: map[string]any{"schema": ref("schemas", schema)},
			fgb.ContentType:  map[string]any{"schema": map[string]any{"type": "string", "format": "binary"}},
		},
	}
}

func ref(section, name string) map[string]any {
	return map[string]any{"$ref": "#/components/" + section + "/" + name}
}

func (g *OpenAPIGenerator) buildParameters() map[string]any {
	return map[string]any{
		"collectionId": map[string]any{
			"name":        "collectionId",
			"in":          "path",
			"description": "local identifier of a collection",
			"required":    true,
			"schema":      map[string]any{"type": "string", "enum": g.cfg.CollectionIDs()},
		},
		"featureId": map[string]any{
			"name":        "featureId",
			"in":          "path",
			"description": "local identifier of a feature",
			"required":    true,
			"schema":      map[string]any{"type": "integer", "format": "int64"},
		},
		"limit": map[string]any{
			"name":        "limit",
			"in":          "query",
			"description": "The optional limit parameter limits the number of items that are presented in the response document.",
			"required":    false,
			"style":       "form",
			"explode":     false,
			"schema":      map[string]any{"type": "integer", "minimum": 0, "default": g.defaultLimit},
		},
		"offset": map[string]any{
			"name":        "offset",
			"in":          "query",
			"description": "Lower bound, exclusive, of the feature ids presented in the response document.",
			"required":    false,
			"schema":      map[string]any{"type": "integer", "minimum": 0, "default": 0},
		},
		"bbox": map[string]any{
			"name":        "bbox",
			"in":          "query",
			"description": "Only features that have a geometry that intersects the bounding box are selected. The bounding box is provided as four or six numbers in WGS 84 longitude/latitude.",
			"required":    false,
			"style":       "form",
			"explode":     false,
			"schema": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 6,
				"items":    map[string]any{"type": "number"},
			},
		},
		"f": map[string]any{
			"name":        "f",
			"in":          "query",
			"description": "The encoding of the response document.",
			"required":    false,
			"schema":      map[string]any{"type": "string", "enum": []string{"json", "fgb"}, "default": "json"},
		},
	}
}

func buildSchemas() map[string]any {
	links := map[string]any{"type": "array", "items": ref("schemas", "Link")}

	return map[string]any{
		"Link": map[string]any{
			"type":     "object",
			"required": []string{"href", "rel"},
			"properties": map[string]any{
				"href":  map[string]any{"type": "string"},
				"rel":   map[string]any{"type": "string"},
				"type":  map[string]any{"type": "string"},
				"title": map[string]any{"type": "string"},
			},
		},
		"LandingPage": map[string]any{
			"type":     "object",
			"required": []string{"links"},
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"links":       links,
			},
		},
		"Conformance": map[string]any{
			"type":     "object",
			"required": []string{"conformsTo"},
			"properties": map[string]any{
				"conformsTo": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		},
		"Collection": map[string]any{
			"type":     "object",
			"required": []string{"id", "links"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "string"},
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"links":       links,
			},
		},
		"Collections": map[string]any{
			"type":     "object",
			"required": []string{"links", "collections"},
			"properties": map[string]any{
				"links":       links,
				"collections": map[string]any{"type": "array", "items": ref("schemas", "Collection")},
			},
		},
		"Feature": map[string]any{
			"type":     "object",
			"required": []string{"type", "geometry", "properties"},
			"properties": map[string]any{
				"type":       map[string]any{"type": "string", "enum": []string{"Feature"}},
				"id":         map[string]any{"type": "integer", "format": "int64"},
				"geometry":   map[string]any{"type": "object", "nullable": true},
				"properties": map[string]any{"type": "object", "nullable": true},
			},
		},
		"FeatureCollection": map[string]any{
			"type":     "object",
			"required": []string{"type", "features"},
			"properties": map[string]any{
				"type":           map[string]any{"type": "string", "enum": []string{"FeatureCollection"}},
				"bbox":           map[string]any{"type": "array", "minItems": 4, "maxItems": 6, "items": map[string]any{"type": "number"}},
				"features":       map[string]any{"type": "array", "items": ref("schemas", "Feature")},
				"numberMatched":  map[string]any{"type": "integer", "minimum": 0},
				"numberReturned": map[string]any{"type": "integer", "minimum": 0},
				"links":          links,
			},
		},
	}
}

func buildResponses() map[string]any {
	text := func(description string) map[string]any {
		return map[string]any{
			"description": description,
			"content": map[string]any{
				"text/plain": map[string]any{"schema": map[string]any{"type": "string"}},
			},
		}
	}
	return map[string]any{
		"BadRequest":  text("A query parameter has an invalid value."),
		"NotFound":    text("The requested resource does not exist on the server."),
		"ServerError": text("A server error occurred."),
	}
}

package ogc

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/edgeflare/ogcapi/pkg/features"
	"github.com/edgeflare/ogcapi/pkg/fgb"
	"github.com/edgeflare/ogcapi/pkg/httputil"
	"github.com/edgeflare/ogcapi/pkg/httputil/middleware"
)

type format int

const (
	formatGeoJSON format = iota
	formatFlatGeobuf
)

// negotiateFormat picks the response encoding from the f parameter, falling
// back to the Accept header when f is absent.
func negotiateFormat(r *http.Request) (format, error) {
	switch f := r.URL.Query().Get("f"); strings.ToLower(f) {
	case "":
		if strings.Contains(r.Header.Get("Accept"), fgb.ContentType) {
			return formatFlatGeobuf, nil
		}
		return formatGeoJSON, nil
	case "json", "geojson":
		return formatGeoJSON, nil
	case "fgb", "flatgeobuf":
		return formatFlatGeobuf, nil
	default:
		return formatGeoJSON, features.BadRequest("unsupported format %q", f)
	}
}

func (s *Server) landingPage(w http.ResponseWriter, r *http.Request) {
	base := s.cfg.BaseURL()
	httputil.JSON(w, http.StatusOK, LandingPage{
		Title:       s.cfg.Title,
		Description: s.cfg.Description,
		Links: []Link{
			{Href: base + "/", Rel: RelSelf, Type: MediaTypeJSON, Title: "this document"},
			{Href: base + "/api/openapi.json", Rel: RelServiceDesc, Type: MediaTypeOpenAPI, Title: "the API definition"},
			{Href: base + "/api.html", Rel: RelServiceDoc, Type: MediaTypeHTML, Title: "the API documentation"},
			{Href: base + "/conformance", Rel: RelConformance, Type: MediaTypeJSON, Title: "OGC API conformance classes implemented by this server"},
			{Href: base + "/collections", Rel: RelData, Type: MediaTypeJSON, Title: "Information about the feature collections"},
		},
	})
}

func (s *Server) conformance(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, Conformance{ConformsTo: ConformanceClasses})
}

func (s *Server) collections(w http.ResponseWriter, r *http.Request) {
	base := s.cfg.BaseURL()
	ids := s.cfg.CollectionIDs()

	resp := Collections{
		Links:       []Link{{Href: base + "/collections", Rel: RelSelf, Type: MediaTypeJSON, Title: "this document"}},
		Collections: make([]Collection, 0, len(ids)),
	}
	for _, id := range ids {
		resp.Collections = append(resp.Collections, s.describe(base, id))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("collectionId")
	if _, ok := s.cfg.Collection(id); !ok {
		s.writeError(w, r, features.NotFound("Collection %s not found", id))
		return
	}
	httputil.JSON(w, http.StatusOK, s.describe(s.cfg.BaseURL(), id))
}

func (s *Server) describe(base, id string) Collection {
	return Collection{
		ID:          id,
		Title:       id,
		Description: "Collection of " + id,
		Links:       collectionLinks(base, id),
	}
}

func (s *Server) items(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("collectionId")

	f, err := negotiateFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	params, err := features.ParseParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := params.LimitOr(s.defaultLimit())
	params.Limit = &limit

	page, err := s.store.GetFeatures(r.Context(), id, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if f == formatFlatGeobuf {
		s.writeFlatGeobuf(w, r, id, page.Features)
		return
	}

	links := itemsLinks(requestBaseURL(r), id, params, limit, page.NumberMatched)
	httputil.JSONAs(w, http.StatusOK, MediaTypeGeoJSON, NewFeatureCollection(page, params.BBox, links))
}

func (s *Server) item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("collectionId")

	f, err := negotiateFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	feature, err := s.store.GetFeature(r.Context(), id, r.PathValue("featureId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if f == formatFlatGeobuf {
		s.writeFlatGeobuf(w, r, id, []*geojson.Feature{feature})
		return
	}
	httputil.JSONAs(w, http.StatusOK, MediaTypeGeoJSON, feature)
}

func (s *Server) writeFlatGeobuf(w http.ResponseWriter, r *http.Request, id string, fs []*geojson.Feature) {
	col, _ := s.cfg.Collection(id)

	var buf bytes.Buffer
	err := fgb.Write(&buf, fs, fgb.Options{
		Name:        id,
		Description: "Collection of " + id,
		Columns:     col.Properties,
	})
	if err != nil {
		s.writeError(w, r, features.Internal(err))
		return
	}
	httputil.Blob(w, http.StatusOK, buf.Bytes(), fgb.ContentType)
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("health check failed", zap.Error(err))
			httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiDocs(w http.ResponseWriter, r *http.Request) {
	page, err := renderDocs(s.cfg.Title, s.cfg.BaseURL()+"/api/openapi.json")
	if err != nil {
		s.writeError(w, r, features.Internal(err))
		return
	}
	httputil.HTML(w, http.StatusOK, page)
}

// writeError answers with the error message as plain text. Internal errors
// are logged with the request scoped logger.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := features.StatusCode(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFromContext(r.Context()).Error("request failed",
			zap.String("route", httputil.RoutePattern(r)),
			zap.Error(err),
		)
	}
	httputil.Text(w, status, err.Error())
}

func (s *Server) defaultLimit() uint64 {
	if s.cfg.Limits.Default == 0 {
		return features.DefaultLimit
	}
	return s.cfg.Limits.Default
}

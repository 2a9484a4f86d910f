package ogc

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/edgeflare/ogcapi/pkg/config"
	"github.com/edgeflare/ogcapi/pkg/features"
	"github.com/edgeflare/ogcapi/pkg/httputil"
	"github.com/edgeflare/ogcapi/pkg/httputil/middleware"
)

type Server struct {
	cfg       *config.Config
	store     features.Store
	router    *httputil.Router
	openapi   *OpenAPIGenerator
	logger    *zap.Logger
	accessLog bool
}

type Option func(*Server)

// WithLogger sets the logger used for the access log and request errors.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccessLog toggles the per-request response log.
func WithAccessLog(enabled bool) Option {
	return func(s *Server) { s.accessLog = enabled }
}

// NewServer wires the OGC API routes onto a router. cfg is shared read-only
// with store.
func NewServer(cfg *config.Config, store features.Store, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		logger:    zap.NewNop(),
		accessLog: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.openapi = NewOpenAPIGenerator(cfg, s.defaultLimit())

	s.router = httputil.NewRouter(
		httputil.WithLogger(s.logger),
		httputil.WithServerOptions(func(srv *http.Server) {
			srv.ReadHeaderTimeout = 10 * time.Second
		}),
	)
	s.router.Wrap(middleware.CORSWithOptions(nil))

	s.router.Use(middleware.RequestID)
	if s.accessLog {
		s.router.Use(middleware.LoggerWithOptions(&middleware.LoggerOptions{Logger: s.logger}))
	}
	s.router.Use(middleware.Recover, middleware.Metrics)

	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.router.HandleFunc("GET /{$}", s.landingPage)
	s.router.HandleFunc("GET /conformance", s.conformance)
	s.router.HandleFunc("GET /collections", s.collections)
	s.router.HandleFunc("GET /collections/{collectionId}", s.collection)
	s.router.HandleFunc("GET /collections/{collectionId}/items", s.items)
	s.router.HandleFunc("GET /collections/{collectionId}/items/{featureId}", s.item)
	s.router.HandleFunc("GET /api.html", s.apiDocs)
	s.router.HandleFunc("GET /healthz", s.health)

	api := s.router.Group("/api")
	api.Handle("GET /openapi.json", s.openapi)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on server.listen_addr until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.router.ListenAndServe(s.cfg.Server.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.router.Shutdown(ctx)
}

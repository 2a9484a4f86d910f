package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRouterHandle(t *testing.T) {
	r := NewRouter()
	r.HandleFunc("GET /collections/{collectionId}", func(w http.ResponseWriter, req *http.Request) {
		Text(w, http.StatusOK, req.PathValue("collectionId")+" "+RoutePattern(req))
	})

	t.Run("match", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/collections/countries", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "countries GET /collections/{collectionId}", w.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/collections/countries", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("no route", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouterInvalidPattern(t *testing.T) {
	assert.Panics(t, func() {
		NewRouter().HandleFunc("/missing-method", okHandler)
	})
}

func TestRouterMiddleware(t *testing.T) {
	r := NewRouter()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}
	r.Use(mw("first"), mw("second"))
	r.HandleFunc("GET /test", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRouterWrap(t *testing.T) {
	r := NewRouter()
	r.Wrap(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("GET /test", okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterGroup(t *testing.T) {
	r := NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Test", "true")
			next.ServeHTTP(w, req)
		})
	})

	api := r.Group("/api")
	api.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, req *http.Request) {
		Text(w, http.StatusOK, RoutePattern(req))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Test"))
	assert.Equal(t, "GET /api/openapi.json", w.Body.String())
}

func TestRouterListenAndServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r := NewRouter()
	r.HandleFunc("GET /test", okHandler)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.ListenAndServe(addr); !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("expected server to close, got %v", err)
		}
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/test")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	wg.Wait()
}

func TestResponseHelpers(t *testing.T) {
	t.Run("json as", func(t *testing.T) {
		w := httptest.NewRecorder()
		JSONAs(w, http.StatusOK, "application/geo+json", map[string]string{"type": "FeatureCollection"})
		assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"type":"FeatureCollection"}`, w.Body.String())
	})

	t.Run("unencodable json", func(t *testing.T) {
		w := httptest.NewRecorder()
		JSON(w, http.StatusOK, map[string]any{"ch": make(chan int)})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("text", func(t *testing.T) {
		w := httptest.NewRecorder()
		Text(w, http.StatusNotFound, "Collection rivers not found")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "Collection rivers not found", w.Body.String())
	})
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edgeflare/ogcapi/pkg/httputil"
	"github.com/edgeflare/ogcapi/pkg/metrics"
)

// Metrics records request counts and durations labelled by route pattern,
// keeping label cardinality bounded by the number of registered routes.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewResponseRecorder(w)

		next.ServeHTTP(rec, r)

		route := httputil.RoutePattern(r)
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.StatusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

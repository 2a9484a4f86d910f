package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/edgeflare/ogcapi/pkg/httputil"
)

// Recover turns a panicking handler into a 500 response. The panic is logged
// with the request scoped logger.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			LoggerFromContext(r.Context()).Error("handler panic",
				zap.Any("panic", rec),
				zap.String("route", httputil.RoutePattern(r)),
				zap.Stack("stack"),
			)
			httputil.Text(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}()
		next.ServeHTTP(w, r)
	})
}

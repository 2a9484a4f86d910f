package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/edgeflare/ogcapi/pkg/httputil"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, reusing one already in the context
// or a valid UUID sent by a proxy in X-Request-Id. The id is echoed in the
// response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, ok := httputil.RequestID(r)
		if !ok {
			if _, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err == nil {
				reqID = r.Header.Get(RequestIDHeader)
			} else {
				reqID = uuid.New().String()
			}
		}

		ctx := context.WithValue(r.Context(), httputil.RequestIDCtxKey, reqID)
		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package httputil

import (
	"encoding/json"
	"net/http"
)

type ContextKey string

const (
	RequestIDCtxKey    ContextKey = "RequestID"
	LogEntryCtxKey     ContextKey = "LogEntry"
	RoutePatternCtxKey ContextKey = "RoutePattern"
)

// RequestID returns the request id set by the RequestID middleware.
func RequestID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(RequestIDCtxKey).(string)
	return id, ok && id != ""
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	JSONAs(w, statusCode, "application/json", data)
}

// JSONAs writes data as JSON with a specific JSON media type such as
// application/geo+json.
func JSONAs(w http.ResponseWriter, statusCode int, contentType string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		Text(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	Blob(w, statusCode, append(body, '\n'), contentType)
}

// Text writes a plain text response with the given status code and text content.
func Text(w http.ResponseWriter, statusCode int, text string) {
	Blob(w, statusCode, []byte(text), "text/plain; charset=utf-8")
}

// HTML writes an HTML response with the given status code and HTML content.
func HTML(w http.ResponseWriter, statusCode int, html string) {
	Blob(w, statusCode, []byte(html), "text/html; charset=utf-8")
}

// Blob writes a binary response with the given status code and data.
func Blob(w http.ResponseWriter, statusCode int, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}

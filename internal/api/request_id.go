package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = iota

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware tags each request with an id for log correlation,
// minting one when the client did not send its own. The id is echoed back
// in the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

// RequestID returns the id assigned by the middleware, or "" outside it.
func RequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	rid, _ := r.Context().Value(requestIDKey).(string)
	return rid
}

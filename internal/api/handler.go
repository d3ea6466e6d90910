package api

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/autobreezebeats/breeze-hub-go/internal/apperrors"
)

// Handler lets route handlers return errors; anything returned is rendered
// through the AppError envelope by WriteError.
type Handler func(w http.ResponseWriter, r *http.Request) error

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// RecovererMiddleware turns handler panics into 500 responses, logging the
// stack with the request id so the failing request can be traced.
func RecovererMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic on %s %s (request %s): %v\n%s",
					r.Method, r.URL.Path, RequestID(r), recovered, debug.Stack())
				WriteError(w, r, apperrors.NewInternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

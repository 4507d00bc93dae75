// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp, so a
// key's CreatedAt and the event published for it carry the same instant.
package requesttime

import (
	"net/http"
	"time"

	"pixkeys/pkg/requestcontext"
)

// Middleware captures the current time (UTC) at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

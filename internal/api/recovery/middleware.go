// Package recovery converts handler panics into clean JSON 500 responses so
// a single bad request cannot take the whole service down.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/nutrigenie/nutrigenie/internal/api/respond"
)

// Middleware returns a mux-compatible wrapper that recovers panics from
// downstream handlers, logs the stack on the service logger, and answers
// with the standard error body.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Str("remote", r.RemoteAddr).
						Bytes("stack", debug.Stack()).
						Msg("request panicked")
					respond.WriteInternalError(w, "unexpected server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

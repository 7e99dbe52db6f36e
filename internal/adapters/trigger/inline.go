package trigger

import (
	"net/http"

	"grupy/internal/logger"
	"grupy/internal/ports/input"
)

// Inline runs a synchronous sweep before serving each GET request so reads
// observe settled state. A failed sweep is logged and the request is served anyway.
func Inline(sweeper input.Sweeper, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ctx := logger.WithKV(logger.WithName(r.Context(), "inline"), "path", r.URL.Path)
			if _, err := sweeper.Sweep(ctx); err != nil {
				logger.WarnKV(ctx, "Inline sweep failed", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

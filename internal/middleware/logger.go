package middleware

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
)

// RequestLogger attaches a logger carrying the chi request id to the request
// context. It must run after chi's RequestID middleware.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base
			if logger == nil {
				logger = logging.Default()
			}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				logger = logger.With("request_id", reqID)
			}
			next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
		})
	}
}

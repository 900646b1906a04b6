package middleware

import (
	"log/slog"
	"net/http"

	"github.com/zezman/directory/pkg/logger"
)

// RequestLogger stores a logger enriched with the request's correlation,
// identity and trace fields in context, retrievable with logger.FromContext.
// Mount it after RequestLogging, Tracing and any Auth middleware.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logger.UserIDFromContext(ctx) == "" {
				if userID := UserIDFromContext(ctx); userID != "" {
					ctx = logger.WithUserID(ctx, userID)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HTTPMiddleware logs every request with its method, path, status and duration.
func HTTPMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logEntry := log.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			logEntry.DebugContext(r.Context(), "Processing request")

			next.ServeHTTP(ww, r)

			logEntry.InfoContext(r.Context(), "Finished processing request",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(startTime),
			)
		})
	}
}

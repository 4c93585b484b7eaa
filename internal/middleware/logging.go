package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/aimeelabs/aimee-backend/internal/logger"
)

// Logging emits one structured line per request. Paths are sanitized so
// user identifiers never end up in logs verbatim, and health checks log at
// debug so they don't drown out real traffic.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if r.URL.Path == "/healthz" || r.URL.Path == "/health" {
				logger.Debug("http_request", fields...)
				return
			}
			logger.Info("http_request", fields...)
		})
	}
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

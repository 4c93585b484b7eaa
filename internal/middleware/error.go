package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body sent when a handler panics.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// ErrorHandler recovers handler panics, logs them server-side, and returns a
// generic 500 so internal detail never reaches the client. Agent panics are
// already contained by the router; this is the net under everything else.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)
					writeErrorResponse(w, r, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	response := ErrorResponse{
		Success:   false,
		Error:     "Internal Server Error",
		Message:   "An unexpected error occurred",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS wraps rs/cors configured for the frontend origin. Multiple origins
// may be supplied comma-separated.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}

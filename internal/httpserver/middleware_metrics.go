package httpserver

import (
	"net/http"

	apierrors "github.com/cartflow/server/internal/errors"
)

// adminMetricsAuth protects the /metrics endpoint with an API key. If no key
// is configured, the endpoint is accessible without authentication.
func adminMetricsAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			expectedHeader := "Bearer " + apiKey

			if authHeader != expectedHeader {
				apierrors.WriteError(w, "metrics", apierrors.ErrUnauthenticated, "invalid or missing admin API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package httpapi

import (
	"net/http"
	"strings"

	"github.com/matzebond/CoP-Bot/internal/auth"
)

// AuthMiddleware guards the dashboard endpoints with a bearer token.
func AuthMiddleware(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			if _, err := svc.Verify(strings.TrimPrefix(h, "Bearer ")); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
